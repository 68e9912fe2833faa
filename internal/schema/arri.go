package schema

import "fmt"

// Offsets follow the legacy ARRIRAW header layout published by ARRI. Blocks:
// IDI image data, ICI image content, CDI camera device, LDI lens device, VFX,
// CID clip, SID sound, FLI frame lines, NRI noise reduction.

var (
	lookLUTModes = map[uint64]string{
		0: "ARRI_LOOK_LUT_NO_LUT",
		1: "ARRI_LOOK_LUT_MONO",
		2: "ARRI_LOOK_LUT_3D",
	}
	cdlModes = map[uint64]string{
		0: "No Look",
		1: "Alexa Look Video",
		2: "CDL Video",
		3: "CDL LogC",
	}
	imageOrientations = map[uint64]string{
		0:  "No flip",
		1:  "H flip",
		12: "H+V flip",
	}
	ndFilterTypes = map[uint64]string{
		0: "No Filter",
		1: "ND 0.3 Rev A",
		2: "ND 0.6 Rev A",
		3: "ND 1.2 Rev A",
		4: "ND 2.1 Rev A",
	}
	frameLineTypes = map[uint64]string{
		0: "Inactive",
		1: "Master",
		2: "Aux",
	}
	masterSlaveSetups = map[uint64]string{0: "independent", 1: "master", 2: "slave", 65535: "--"}
	eyeInfo           = map[uint64]string{0: "single", 1: "left eye", 2: "right eye", 65535: "--"}
	noYes             = map[uint64]string{0: "no", 1: "yes"}
	offOn             = map[uint64]string{0: "OFF", 1: "ON"}
)

// DefaultSets returns the built-in default and minimal field lists.
func DefaultSets() Sets {
	return Sets{
		Default: []string{
			"CameraModel", "CameraSerialNumber", "CameraId", "CameraClipName",
			"Reel", "Scene", "Take",
			"SystemImageCreationDate", "SystemImageCreationTime", "MasterTC",
			"SensorFPS", "ProjectFPS", "ExposureTime", "ShutterAngle", "EffectiveShutterAngle",
			"ExposureIndexASA", "WhiteBalance", "WhiteBalanceCC", "Resolution",
			"LensModel", "LensFocalLength", "LensIris", "LensFocusDistance", "NDFilterType",
			"LookName", "CDLSlope", "CDLOffset", "CDLPower", "CDLSaturation",
		},
		Minimal: []string{
			"CameraModel", "CameraId", "Reel", "MasterTC", "SensorFPS",
			"ExposureIndexASA", "WhiteBalance", "LensModel", "Resolution",
		},
	}
}

// ARRI builds the legacy ARRIRAW schema with the given field sets.
func ARRI(sets Sets) (*Schema, error) {
	return Build(ARRIFields(), sets)
}

// ARRIFields returns the legacy ARRIRAW field table in declaration order.
func ARRIFields() []FieldSpec {
	var fields []FieldSpec
	add := func(specs ...FieldSpec) { fields = append(fields, specs...) }

	// IDI
	add(
		u32("IDIValid", 0x0010),
		u32("ImageWidth", 0x0014),
		u32("ImageHeight", 0x0018),
		u32("DataType", 0x001C),
		u32("DataSpace", 0x0020),
		u32("ActiveImageLeft", 0x0024),
		u32("ActiveImageTop", 0x0028),
		u32("ActiveImageWidth", 0x002C),
		u32("ActiveImageHeight", 0x0030),
		u32("FullImageWidth", 0x003C),
		u32("FullImageHeight", 0x0040),
		derived("Resolution", Resolution, "ImageWidth", "ImageHeight"),
	)

	// ICI
	add(
		u32("ICIValid", 0x0054),
		u32("ColorProcessingVersion", 0x0058),
		withUnit(u32("WhiteBalance", 0x005C), "K"),
		f32("WhiteBalanceCC", 0x0060),
		tuple("WBFactors", 0x0064, 3),
		enum32("WBAppliedInCamera", 0x0070, noYes),
		u32("ExposureIndexASA", 0x0074),
		enum32("TargetColorSpace", 0x00BC, map[uint64]string{2: "LogCWGam"}),
		u32("Sharpness", 0x00C0),
		f32("LensSqueezeFactor", 0x00C4),
		enum32("ImageOrientation", 0x00C8, imageOrientations),
		str("LookName", 0x00CC, 32),
		enum32("LookLUTMode", 0x00EC, lookLUTModes),
		u32("LookLUTOffset", 0x00F0),
		u32("LookLUTSize", 0x00F4),
		f32("LookSaturation", 0x00F8),
		f32("CDLSaturation", 0x00FC),
		tuple("CDLSlope", 0x0100, 3),
		tuple("CDLOffset", 0x010C, 3),
		tuple("CDLPower", 0x0118, 3),
		enum32("CDLMode", 0x0130, cdlModes),
		u32("ImageDataChecksum", 0x0134),
		u32("ColorOrder", 0x0138),
	)

	// CDI
	add(
		u32("CDIValid", 0x0160),
		u32("CameraTypeId", 0x0164),
		u32("CameraRevision", 0x0168),
		u32("CameraSerialNumber", 0x0170),
		reversed(str("CameraId", 0x0174, 4)),
		u32("CameraIndex", 0x0178),
		bcd("SystemImageCreationDate", 0x017C, BCDDate, ""),
		bcd("SystemImageCreationTime", 0x0180, BCDTime, ""),
		bcd("SystemImageTimeZoneOffset", 0x0184, BCDZone, "UTC+"),
		bcd("SystemImageTimeZoneDST", 0x0188, BCDZone, "+"),
		scaled("ExposureTime", 0x018C, 0.001, 3, "ms"),
		scaled("ShutterAngle", 0x0190, 0.001, 2, "deg"),
		scaled("SensorFPS", 0x01A0, 0.001, 3, "fps"),
		scaled("ProjectFPS", 0x01A4, 0.001, 3, "fps"),
		FieldSpec{
			Name:   "MasterTC",
			Offset: 0x01A8,
			Width:  12,
			Kind:   KindTimecode,
			Order:  OrderLittle,
			Timecode: &TimecodeLayout{
				CountOffset: 4,
				BaseOffset:  8,
				BaseScale:   0.001,
				FlagOffset:  0,
				FlagBit:     6,
			},
			Description: "master timecode from frame count and time base",
		},
		bcdTimecode("MasterTCBCD", 0x01A8),
		u32("MasterTCFrameCount", 0x01AC),
		scaled("MasterTCTimeBase", 0x01B0, 0.001, 3, "fps"),
		u64("StorageMediaSerialNumber", 0x0268),
		str("CameraFamily", 0x029C, 8),
		str("RecorderType", 0x02A4, 32),
		flag("MirrorShutterRunning", 0x02C4, 0, noYes),
		flag("Vari", 0x02C4, 1, map[uint64]string{0: "Valid Image", 1: "Duplicate Image"}),
		FieldSpec{Name: "UUID", Offset: 0x02D0, Width: 16, Kind: KindUUID},
		str("CameraModel", 0x02F8, 20),
		u16("CameraProduct", 0x030C),
		u16("CameraSubProduct", 0x030E),
		derived("EffectiveShutterAngle", ShutterAngle, "ExposureTime", "SensorFPS"),
	)

	// LDI
	add(
		u32("LDIValid", 0x0370),
		enum32("LensDistanceUnit", 0x0374, map[uint64]string{0: "Inch", 1: "Meter", 2: "Default Unit"}),
		u32("LensFocusDistance", 0x0378),
		scaled("LensFocalLength", 0x037C, 0.001, 2, "mm"),
		u32("LensSerialNumber", 0x0380),
		i32("LensLinearIris", 0x0384),
		derived("LensIris", TStop, "LensLinearIris"),
		enum16("NDFilterType", 0x0388, ndFilterTypes),
		u16("NDFilterDensity", 0x038A),
		str("LensModel", 0x0398, 32),
	)
	encoders := []string{
		"RawEncoderFocusRawLds", "RawEncoderFocusRawMotor",
		"RawEncoderFocalRawLds", "RawEncoderFocalRawMotor",
		"RawEncoderIrisRawLds", "RawEncoderIrisRawMotor",
		"EncoderLimFocusLdsMin", "EncoderLimFocusLdsMax",
		"EncoderLimFocalLdsMin", "EncoderLimFocalLdsMax",
		"EncoderLimIrisLdsMin", "EncoderLimIrisLdsMax",
		"EncoderLimFocusMotorMin", "EncoderLimFocusMotorMax",
		"EncoderLimFocalMotorMin", "EncoderLimFocalMotorMax",
		"EncoderLimIrisMotorMin", "EncoderLimIrisMotorMax",
	}
	for i, name := range encoders {
		add(u16(name, 0x03B8+2*i))
	}
	add(
		enumN("LdsLagType", 0x03DC, 1, map[uint64]string{0: "no lag", 1: "constant lag", 2: "unknown lag"}),
		u8("LdsLagValue", 0x03DD),
	)

	// VFX
	add(
		u32("VFXValid", 0x0438),
		i64("GPSLatitude", 0x043C),
		i64("GPSLongitude", 0x0444),
		f32("CameraX", 0x044C),
		f32("CameraY", 0x0450),
		f32("CameraZ", 0x0454),
		f32("CameraPan", 0x0458),
		i32("CameraTilt", 0x045C),
		i32("CameraRoll", 0x0460),
		enum16("MasterSlaveSetupInfo", 0x0464, masterSlaveSetups),
		enum16("3DEyeInfo", 0x0468, eyeInfo),
	)

	// CID
	add(
		u32("CIDValid", 0x04F0),
		u8("CircleTake", 0x04F4),
		str("Reel", 0x04F8, 8),
		str("Scene", 0x0500, 16),
		str("Take", 0x0510, 8),
		str("Director", 0x0518, 24),
		str("Cinematographer", 0x0538, 24),
		str("Production", 0x0558, 24),
		str("ProductionCompany", 0x0578, 24),
		str("UserInfo", 0x0598, 256),
		str("CameraClipName", 0x0698, 20),
	)

	// SID
	add(
		u32("SIDValid", 0x0718),
		bcdTimecode("SoundTC", 0x071C),
		str("SoundFileName", 0x072C, 32),
		str("SoundRollName", 0x074C, 32),
		str("SoundSceneName", 0x076C, 32),
		str("SoundTakeName", 0x078C, 32),
		str("AudioInfo", 0x07AC, 32),
	)

	// FLI
	add(
		str("FrameLineFile1", 0x0850, 32),
		str("FrameLineFile2", 0x0870, 32),
	)
	for i, id := range []string{"1A", "1B", "1C", "2A", "2B", "2C"} {
		add(frameLine(id, 0x0890+0x30*i)...)
	}

	// NRI
	add(
		enum32("NoiseReductionMode", 0x09D8, map[uint64]string{0: "OFF", 1: "ANR", 65535: "OFF"}),
		f32("NoiseReductionStrength", 0x09DC),
		enum32("NoiseReductionApplied", 0x09E0, offOn),
	)

	return fields
}

func frameLine(id string, offset int) []FieldSpec {
	prefix := fmt.Sprintf("FrameLine%s", id)
	return []FieldSpec{
		enum32(prefix+"Type", offset, frameLineTypes),
		str(prefix+"Name", offset+4, 32),
		u16(prefix+"Left", offset+36),
		u16(prefix+"Top", offset+38),
		u16(prefix+"Width", offset+40),
		u16(prefix+"Height", offset+42),
	}
}

func u8(name string, off int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 1, Kind: KindUint, Order: OrderLittle}
}

func u16(name string, off int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 2, Kind: KindUint, Order: OrderLittle}
}

func u32(name string, off int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 4, Kind: KindUint, Order: OrderLittle}
}

func u64(name string, off int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 8, Kind: KindUint, Order: OrderLittle}
}

func i32(name string, off int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 4, Kind: KindInt, Order: OrderLittle}
}

func i64(name string, off int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 8, Kind: KindInt, Order: OrderLittle}
}

func f32(name string, off int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 4, Kind: KindFloat, Order: OrderLittle}
}

func str(name string, off, width int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: width, Kind: KindString}
}

func reversed(f FieldSpec) FieldSpec {
	f.Reversed = true
	return f
}

func withUnit(f FieldSpec, unit string) FieldSpec {
	f.Unit = unit
	return f
}

func scaled(name string, off int, scale float64, decimals int, unit string) FieldSpec {
	f := u32(name, off)
	f.Scale = scale
	f.Decimals = decimals
	f.Unit = unit
	return f
}

func tuple(name string, off, count int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 4 * count, Kind: KindTuple, Order: OrderLittle, Count: count}
}

func enumN(name string, off, width int, labels map[uint64]string) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: width, Kind: KindEnum, Order: OrderLittle, Labels: labels}
}

func enum16(name string, off int, labels map[uint64]string) FieldSpec {
	return enumN(name, off, 2, labels)
}

func enum32(name string, off int, labels map[uint64]string) FieldSpec {
	return enumN(name, off, 4, labels)
}

func flag(name string, off int, bit uint, labels map[uint64]string) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 4, Kind: KindFlag, Order: OrderLittle, Bit: bit, Labels: labels}
}

// bcd declares a packed BCD word whose first stored byte holds the leading
// digits.
func bcd(name string, off int, layout BCDLayout, prefix string) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 4, Kind: KindBCD, Order: OrderBig, BCD: layout, Prefix: prefix}
}

// bcdTimecode declares a SMPTE timecode stored as a little-endian BCD word
// with the frames in the low byte.
func bcdTimecode(name string, off int) FieldSpec {
	return FieldSpec{Name: name, Offset: off, Width: 4, Kind: KindBCD, Order: OrderLittle, BCD: BCDTimecode}
}

func derived(name string, fn DeriveFunc, inputs ...string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindDerived, Derive: &Derivation{Inputs: inputs, Compute: fn}}
}
