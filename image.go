package tiff

// An Image is the ordered list of directories of a TIFF file.
type Image struct {
	Directories []*FileDirectory
}

// NewImage returns an image made of directories.
func NewImage(directories ...*FileDirectory) *Image {
	return &Image{Directories: directories}
}

// Add appends a directory.
func (m *Image) Add(d *FileDirectory) {
	m.Directories = append(m.Directories, d)
}

// Directory returns the first directory, nil for an empty image.
func (m *Image) Directory() *FileDirectory {
	if len(m.Directories) == 0 {
		return nil
	}
	return m.Directories[0]
}

// SizeHeaderAndDirectories returns the byte size of the header and every
// directory, external values excluded.
func (m *Image) SizeHeaderAndDirectories() int {
	size := HeaderBytes
	for _, d := range m.Directories {
		size += d.Size()
	}
	return size
}

// SizeHeaderAndDirectoriesWithValues returns the byte size of the header,
// every directory and their external values.
func (m *Image) SizeHeaderAndDirectoriesWithValues() int {
	size := HeaderBytes
	for _, d := range m.Directories {
		size += d.SizeWithValues()
	}
	return size
}
