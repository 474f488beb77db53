package tiff

// A tiff image file contains one or more images. The metadata
// of each image is contained in an Image File Directory (IFD),
// which contains entries of 12 bytes each and is described
// on page 14-16 of TIFF 6.0. An IFD entry consists of
//
//  - a tag, which describes the signification of the entry,
//  - the data type and length of the entry,
//  - the data itself or a pointer to it if it is more than 4 bytes.
//
// The presence of a length means that each IFD is effectively an array.

const (
	ByteOrderLittleEndian = "II"
	ByteOrderBigEndian    = "MM"

	FileIdentifier = 42

	HeaderBytes    = 8  // Byte order, identifier and first IFD offset.
	IFDHeaderBytes = 2  // Number of entries.
	IFDEntryBytes  = 12 // Length of an IFD entry in bytes.
	IFDOffsetBytes = 4  // Offset of the next IFD.

	// Entry values of at most this many bytes are stored inline.
	inlineValueBytes = 4

	DefaultMaxBytesPerStrip = 8000
)

// Compression types (TIFF 6.0 and the Adobe supplements).
const (
	CompressionNone         = 1
	CompressionCCITTHuffman = 2
	CompressionT4           = 3 // Group 3 Fax.
	CompressionT6           = 4 // Group 4 Fax.
	CompressionLZW          = 5
	CompressionJPEGOld      = 6 // Superseded by CompressionJPEG.
	CompressionJPEG         = 7
	CompressionDeflate      = 8 // zlib compression.
	CompressionPackBits     = 32773
	CompressionPKZIPDeflate = 32946 // Superseded by CompressionDeflate.
)

// Photometric interpretation values (TIFF 6.0, p. 37).
const (
	PhotometricWhiteIsZero  = 0
	PhotometricBlackIsZero  = 1
	PhotometricRGB          = 2
	PhotometricPalette      = 3
	PhotometricTransparency = 4 // transparency mask
)

// Values for the PlanarConfiguration tag.
const (
	PlanarConfigurationChunky = 1 // Contiguous (aka RGBRGBRGBRGB)
	PlanarConfigurationPlanar = 2 // Separate (aka RRRRGGGGBBBB)
)

// Values for the SampleFormat tag.
const (
	SampleFormatUnsignedInt = 1
	SampleFormatSignedInt   = 2
	SampleFormatFloat       = 3
	SampleFormatUndefined   = 4
)

// Values for the ResolutionUnit tag (page 18).
const (
	ResolutionUnitNone       = 1
	ResolutionUnitInch       = 2 // Dots per inch.
	ResolutionUnitCentimeter = 3 // Dots per centimeter.
)

// Values for the ExtraSamples tag.
const (
	ExtraSamplesUnspecified       = 0
	ExtraSamplesAssociatedAlpha   = 1
	ExtraSamplesUnassociatedAlpha = 2
)

// Values for the FillOrder tag.
const (
	FillOrderLowerColumnHigherOrder = 1
	FillOrderLowerColumnLowerOrder  = 2
)

// Values for the GrayResponseUnit tag.
const (
	GrayResponseTenths             = 1
	GrayResponseHundredths         = 2
	GrayResponseThousandths        = 3
	GrayResponseTenThousandths     = 4
	GrayResponseHundredThousandths = 5
)

// Values for the Orientation tag.
const (
	OrientationTopRowLeftColumn     = 1
	OrientationTopRowRightColumn    = 2
	OrientationBottomRowRightColumn = 3
	OrientationBottomRowLeftColumn  = 4
	OrientationLeftRowTopColumn     = 5
	OrientationRightRowTopColumn    = 6
	OrientationRightRowBottomColumn = 7
	OrientationLeftRowBottomColumn  = 8
)

// Values for the SubfileType tag.
const (
	SubfileTypeFull    = 1
	SubfileTypeReduced = 2
	SubfileTypePage    = 3 // single page of a multi-page image
)

// Values for the Threshholding tag.
const (
	ThreshholdingNone    = 1
	ThreshholdingOrdered = 2
	ThreshholdingRandom  = 3
)
