package tiff

import (
	"fmt"
	"sort"
)

// A FieldTagType identifies a directory entry. Its value is the TIFF tag id.
type FieldTagType uint16

// Baseline tags (TIFF 6.0, Appendix A).
const (
	TagArtist                    FieldTagType = 315
	TagBitsPerSample             FieldTagType = 258
	TagCellLength                FieldTagType = 265
	TagCellWidth                 FieldTagType = 264
	TagColorMap                  FieldTagType = 320
	TagCompression               FieldTagType = 259
	TagCopyright                 FieldTagType = 33432
	TagDateTime                  FieldTagType = 306
	TagExtraSamples              FieldTagType = 338
	TagFillOrder                 FieldTagType = 266
	TagFreeByteCounts            FieldTagType = 289
	TagFreeOffsets               FieldTagType = 288
	TagGrayResponseCurve         FieldTagType = 291
	TagGrayResponseUnit          FieldTagType = 290
	TagHostComputer              FieldTagType = 316
	TagImageDescription          FieldTagType = 270
	TagImageLength               FieldTagType = 257
	TagImageWidth                FieldTagType = 256
	TagMake                      FieldTagType = 271
	TagMaxSampleValue            FieldTagType = 281
	TagMinSampleValue            FieldTagType = 280
	TagModel                     FieldTagType = 272
	TagNewSubfileType            FieldTagType = 254
	TagOrientation               FieldTagType = 274
	TagPhotometricInterpretation FieldTagType = 262
	TagPlanarConfiguration       FieldTagType = 284
	TagResolutionUnit            FieldTagType = 296
	TagRowsPerStrip              FieldTagType = 278
	TagSamplesPerPixel           FieldTagType = 277
	TagSoftware                  FieldTagType = 305
	TagStripByteCounts           FieldTagType = 279
	TagStripOffsets              FieldTagType = 273
	TagSubfileType               FieldTagType = 255
	TagThreshholding             FieldTagType = 263
	TagXResolution               FieldTagType = 282
	TagYResolution               FieldTagType = 283
)

// Extension tags.
const (
	TagBadFaxLines            FieldTagType = 326
	TagCleanFaxData           FieldTagType = 327
	TagClipPath               FieldTagType = 343
	TagConsecutiveBadFaxLines FieldTagType = 328
	TagDecode                 FieldTagType = 433
	TagDefaultImageColor      FieldTagType = 434
	TagDocumentName           FieldTagType = 269
	TagDotRange               FieldTagType = 336
	TagHalftoneHints          FieldTagType = 321
	TagIndexed                FieldTagType = 346
	TagJPEGTables             FieldTagType = 347
	TagPageName               FieldTagType = 285
	TagPageNumber             FieldTagType = 297
	TagPredictor              FieldTagType = 317
	TagPrimaryChromaticities  FieldTagType = 319
	TagReferenceBlackWhite    FieldTagType = 532
	TagSampleFormat           FieldTagType = 339
	TagSMinSampleValue        FieldTagType = 340
	TagSMaxSampleValue        FieldTagType = 341
	TagStripRowCounts         FieldTagType = 559
	TagSubIFDs                FieldTagType = 330
	TagT4Options              FieldTagType = 292
	TagT6Options              FieldTagType = 293
	TagTileByteCounts         FieldTagType = 325
	TagTileLength             FieldTagType = 323
	TagTileOffsets            FieldTagType = 324
	TagTileWidth              FieldTagType = 322
	TagTransferFunction       FieldTagType = 301
	TagWhitePoint             FieldTagType = 318
	TagXClipPathUnits         FieldTagType = 344
	TagXPosition              FieldTagType = 286
	TagYCbCrCoefficients      FieldTagType = 529
	TagYCbCrPositioning       FieldTagType = 531
	TagYCbCrSubSampling       FieldTagType = 530
	TagYClipPathUnits         FieldTagType = 345
	TagYPosition              FieldTagType = 287
)

// EXIF tags.
const (
	TagApertureValue     FieldTagType = 37378
	TagColorSpace        FieldTagType = 40961
	TagDateTimeDigitized FieldTagType = 36868
	TagDateTimeOriginal  FieldTagType = 36867
	TagExifIFD           FieldTagType = 34665
	TagExifVersion       FieldTagType = 36864
	TagExposureTime      FieldTagType = 33434
	TagFileSource        FieldTagType = 41728
	TagFlash             FieldTagType = 37385
	TagFlashpixVersion   FieldTagType = 40960
	TagFNumber           FieldTagType = 33437
	TagImageUniqueID     FieldTagType = 42016
	TagLightSource       FieldTagType = 37384
	TagMakerNote         FieldTagType = 37500
	TagShutterSpeedValue FieldTagType = 37377
	TagUserComment       FieldTagType = 37510
	TagIPTC              FieldTagType = 33723
)

// Private tags: IPTC, ICC, XMP, GDAL, Photoshop and GeoTIFF.
const (
	TagICCProfile          FieldTagType = 34675
	TagXMP                 FieldTagType = 700
	TagGDALMetadata        FieldTagType = 42112
	TagGDALNoData          FieldTagType = 42113
	TagPhotoshop           FieldTagType = 34377
	TagModelPixelScale     FieldTagType = 33550
	TagModelTiepoint       FieldTagType = 33922
	TagModelTransformation FieldTagType = 34264
	TagGeoKeyDirectory     FieldTagType = 34735
	TagGeoDoubleParams     FieldTagType = 34736
	TagGeoAsciiParams      FieldTagType = 34737
)

type tagInfo struct {
	name  string
	array bool // single-count values are still lists
}

var tags = map[FieldTagType]tagInfo{
	TagArtist:                    {"Artist", false},
	TagBitsPerSample:             {"BitsPerSample", true},
	TagCellLength:                {"CellLength", false},
	TagCellWidth:                 {"CellWidth", false},
	TagColorMap:                  {"ColorMap", false},
	TagCompression:               {"Compression", false},
	TagCopyright:                 {"Copyright", false},
	TagDateTime:                  {"DateTime", false},
	TagExtraSamples:              {"ExtraSamples", true},
	TagFillOrder:                 {"FillOrder", false},
	TagFreeByteCounts:            {"FreeByteCounts", false},
	TagFreeOffsets:               {"FreeOffsets", false},
	TagGrayResponseCurve:         {"GrayResponseCurve", false},
	TagGrayResponseUnit:          {"GrayResponseUnit", false},
	TagHostComputer:              {"HostComputer", false},
	TagImageDescription:          {"ImageDescription", false},
	TagImageLength:               {"ImageLength", false},
	TagImageWidth:                {"ImageWidth", false},
	TagMake:                      {"Make", false},
	TagMaxSampleValue:            {"MaxSampleValue", false},
	TagMinSampleValue:            {"MinSampleValue", false},
	TagModel:                     {"Model", false},
	TagNewSubfileType:            {"NewSubfileType", false},
	TagOrientation:               {"Orientation", false},
	TagPhotometricInterpretation: {"PhotometricInterpretation", false},
	TagPlanarConfiguration:       {"PlanarConfiguration", false},
	TagResolutionUnit:            {"ResolutionUnit", false},
	TagRowsPerStrip:              {"RowsPerStrip", false},
	TagSamplesPerPixel:           {"SamplesPerPixel", false},
	TagSoftware:                  {"Software", false},
	TagStripByteCounts:           {"StripByteCounts", true},
	TagStripOffsets:              {"StripOffsets", true},
	TagSubfileType:               {"SubfileType", false},
	TagThreshholding:             {"Threshholding", false},
	TagXResolution:               {"XResolution", false},
	TagYResolution:               {"YResolution", false},
	TagBadFaxLines:               {"BadFaxLines", false},
	TagCleanFaxData:              {"CleanFaxData", false},
	TagClipPath:                  {"ClipPath", false},
	TagConsecutiveBadFaxLines:    {"ConsecutiveBadFaxLines", false},
	TagDecode:                    {"Decode", false},
	TagDefaultImageColor:         {"DefaultImageColor", false},
	TagDocumentName:              {"DocumentName", false},
	TagDotRange:                  {"DotRange", false},
	TagHalftoneHints:             {"HalftoneHints", false},
	TagIndexed:                   {"Indexed", false},
	TagJPEGTables:                {"JPEGTables", false},
	TagPageName:                  {"PageName", false},
	TagPageNumber:                {"PageNumber", false},
	TagPredictor:                 {"Predictor", false},
	TagPrimaryChromaticities:     {"PrimaryChromaticities", false},
	TagReferenceBlackWhite:       {"ReferenceBlackWhite", false},
	TagSampleFormat:              {"SampleFormat", true},
	TagSMinSampleValue:           {"SMinSampleValue", false},
	TagSMaxSampleValue:           {"SMaxSampleValue", false},
	TagStripRowCounts:            {"StripRowCounts", true},
	TagSubIFDs:                   {"SubIFDs", false},
	TagT4Options:                 {"T4Options", false},
	TagT6Options:                 {"T6Options", false},
	TagTileByteCounts:            {"TileByteCounts", true},
	TagTileLength:                {"TileLength", false},
	TagTileOffsets:               {"TileOffsets", true},
	TagTileWidth:                 {"TileWidth", false},
	TagTransferFunction:          {"TransferFunction", false},
	TagWhitePoint:                {"WhitePoint", false},
	TagXClipPathUnits:            {"XClipPathUnits", false},
	TagXPosition:                 {"XPosition", false},
	TagYCbCrCoefficients:         {"YCbCrCoefficients", false},
	TagYCbCrPositioning:          {"YCbCrPositioning", false},
	TagYCbCrSubSampling:          {"YCbCrSubSampling", false},
	TagYClipPathUnits:            {"YClipPathUnits", false},
	TagYPosition:                 {"YPosition", false},
	TagApertureValue:             {"ApertureValue", false},
	TagColorSpace:                {"ColorSpace", false},
	TagDateTimeDigitized:         {"DateTimeDigitized", false},
	TagDateTimeOriginal:          {"DateTimeOriginal", false},
	TagExifIFD:                   {"ExifIFD", false},
	TagExifVersion:               {"ExifVersion", false},
	TagExposureTime:              {"ExposureTime", false},
	TagFileSource:                {"FileSource", false},
	TagFlash:                     {"Flash", false},
	TagFlashpixVersion:           {"FlashpixVersion", false},
	TagFNumber:                   {"FNumber", false},
	TagImageUniqueID:             {"ImageUniqueID", false},
	TagLightSource:               {"LightSource", false},
	TagMakerNote:                 {"MakerNote", false},
	TagShutterSpeedValue:         {"ShutterSpeedValue", false},
	TagUserComment:               {"UserComment", false},
	TagIPTC:                      {"IPTC", false},
	TagICCProfile:                {"ICCProfile", false},
	TagXMP:                       {"XMP", false},
	TagGDALMetadata:              {"GDAL_METADATA", false},
	TagGDALNoData:                {"GDAL_NODATA", false},
	TagPhotoshop:                 {"Photoshop", false},
	TagModelPixelScale:           {"ModelPixelScale", false},
	TagModelTiepoint:             {"ModelTiepoint", false},
	TagModelTransformation:       {"ModelTransformation", false},
	TagGeoKeyDirectory:           {"GeoKeyDirectory", false},
	TagGeoDoubleParams:           {"GeoDoubleParams", false},
	TagGeoAsciiParams:            {"GeoAsciiParams", false},
}

// TagByID returns the tag with the given id. Unknown ids are a FormatError.
func TagByID(id uint16) (FieldTagType, error) {
	t := FieldTagType(id)
	if _, ok := tags[t]; !ok {
		return 0, FormatError(fmt.Sprintf("unknown tag id %d", id))
	}
	return t, nil
}

// KnownTags returns every known tag in ascending id order.
func KnownTags() []FieldTagType {
	known := make([]FieldTagType, 0, len(tags))
	for t := range tags {
		known = append(known, t)
	}
	sort.Slice(known, func(i, j int) bool { return known[i] < known[j] })
	return known
}

// ID returns the TIFF tag id.
func (t FieldTagType) ID() uint16 {
	return uint16(t)
}

// IsArray reports whether the values of the tag are always lists.
func (t FieldTagType) IsArray() bool {
	return tags[t].array
}

// Name returns the common name of the tag.
func (t FieldTagType) Name() string {
	if info, ok := tags[t]; ok {
		return info.name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

func (t FieldTagType) String() string {
	return t.Name()
}
