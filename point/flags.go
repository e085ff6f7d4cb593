package point

import "github.com/arloliu/lasf/errs"

// Legacy return byte (formats 0-5).
const (
	legacyReturnNumberMask     = 0x07 // bits 0-2
	legacyNumberOfReturnsMask  = 0x38 // bits 3-5
	legacyNumberOfReturnsShift = 3
	scanDirectionMask          = 0x40 // bit 6, shared with the extended flag byte
	edgeOfFlightLineMask       = 0x80 // bit 7, shared with the extended flag byte

	MaxLegacyReturn = 7
)

// Legacy classification byte (formats 0-5).
const (
	legacyClassMask    = 0x1F // bits 0-4
	legacySyntheticBit = 0x20
	legacyKeyPointBit  = 0x40
	legacyWithheldBit  = 0x80

	MaxLegacyClass = 31
)

// Extended return and flag bytes (formats 6-10).
const (
	extendedReturnNumberMask     = 0x0F // bits 0-3 of the return byte
	extendedNumberOfReturnsShift = 4    // bits 4-7 of the return byte
	classificationFlagsMask      = 0x0F // bits 0-3 of the flag byte
	scannerChannelMask           = 0x30 // bits 4-5 of the flag byte
	scannerChannelShift          = 4

	MaxExtendedReturn      = 15
	MaxClassificationFlags = 15
	MaxScannerChannel      = 3
)

// Extended classification flag bits (ClassificationFlags field).
const (
	ClassFlagSynthetic uint8 = 1 << iota
	ClassFlagKeyPoint
	ClassFlagWithheld
	ClassFlagOverlap
)

func checkRange(field string, v uint8, hi uint8) error {
	if v > hi {
		return errs.OutOfRange(field, int64(v), 0, int64(hi))
	}

	return nil
}

func flagBit(set bool, mask byte) byte {
	if set {
		return mask
	}

	return 0
}

// PackLegacyFlags packs the legacy return byte.
//
// Bit layout: 0-2 return number, 3-5 number of returns, 6 scan direction,
// 7 edge of flight line. A number of returns of 0 means "unknown" and is accepted.
//
// Returns a *errs.RangeError when a count exceeds 7; nothing is masked.
func PackLegacyFlags(returnNumber, numberOfReturns uint8, scanDirection, edgeOfFlightLine bool) (byte, error) {
	if err := checkRange("return number", returnNumber, MaxLegacyReturn); err != nil {
		return 0, err
	}
	if err := checkRange("number of returns", numberOfReturns, MaxLegacyReturn); err != nil {
		return 0, err
	}

	b := returnNumber | numberOfReturns<<legacyNumberOfReturnsShift
	b |= flagBit(scanDirection, scanDirectionMask)
	b |= flagBit(edgeOfFlightLine, edgeOfFlightLineMask)

	return b, nil
}

// UnpackLegacyFlags is the inverse of PackLegacyFlags.
func UnpackLegacyFlags(b byte) (returnNumber, numberOfReturns uint8, scanDirection, edgeOfFlightLine bool) {
	returnNumber = b & legacyReturnNumberMask
	numberOfReturns = (b & legacyNumberOfReturnsMask) >> legacyNumberOfReturnsShift
	scanDirection = b&scanDirectionMask != 0
	edgeOfFlightLine = b&edgeOfFlightLineMask != 0

	return returnNumber, numberOfReturns, scanDirection, edgeOfFlightLine
}

// PackLegacyClassification packs the legacy classification byte:
// bits 0-4 class, 5 synthetic, 6 key-point, 7 withheld.
func PackLegacyClassification(class uint8, synthetic, keyPoint, withheld bool) (byte, error) {
	if err := checkRange("classification", class, MaxLegacyClass); err != nil {
		return 0, err
	}

	b := class
	b |= flagBit(synthetic, legacySyntheticBit)
	b |= flagBit(keyPoint, legacyKeyPointBit)
	b |= flagBit(withheld, legacyWithheldBit)

	return b, nil
}

// UnpackLegacyClassification is the inverse of PackLegacyClassification.
func UnpackLegacyClassification(b byte) (class uint8, synthetic, keyPoint, withheld bool) {
	return b & legacyClassMask, b&legacySyntheticBit != 0, b&legacyKeyPointBit != 0, b&legacyWithheldBit != 0
}

// PackExtendedReturns packs the extended return byte: bits 0-3 return number,
// bits 4-7 number of returns.
func PackExtendedReturns(returnNumber, numberOfReturns uint8) (byte, error) {
	if err := checkRange("return number", returnNumber, MaxExtendedReturn); err != nil {
		return 0, err
	}
	if err := checkRange("number of returns", numberOfReturns, MaxExtendedReturn); err != nil {
		return 0, err
	}

	return returnNumber | numberOfReturns<<extendedNumberOfReturnsShift, nil
}

// UnpackExtendedReturns is the inverse of PackExtendedReturns.
func UnpackExtendedReturns(b byte) (returnNumber, numberOfReturns uint8) {
	return b & extendedReturnNumberMask, b >> extendedNumberOfReturnsShift
}

// PackExtendedFlags packs the second extended byte: bits 0-3 classification flags,
// 4-5 scanner channel, 6 scan direction, 7 edge of flight line.
func PackExtendedFlags(classificationFlags, scannerChannel uint8, scanDirection, edgeOfFlightLine bool) (byte, error) {
	if err := checkRange("classification flags", classificationFlags, MaxClassificationFlags); err != nil {
		return 0, err
	}
	if err := checkRange("scanner channel", scannerChannel, MaxScannerChannel); err != nil {
		return 0, err
	}

	b := classificationFlags | scannerChannel<<scannerChannelShift
	b |= flagBit(scanDirection, scanDirectionMask)
	b |= flagBit(edgeOfFlightLine, edgeOfFlightLineMask)

	return b, nil
}

// UnpackExtendedFlags is the inverse of PackExtendedFlags.
func UnpackExtendedFlags(b byte) (classificationFlags, scannerChannel uint8, scanDirection, edgeOfFlightLine bool) {
	classificationFlags = b & classificationFlagsMask
	scannerChannel = (b & scannerChannelMask) >> scannerChannelShift
	scanDirection = b&scanDirectionMask != 0
	edgeOfFlightLine = b&edgeOfFlightLineMask != 0

	return classificationFlags, scannerChannel, scanDirection, edgeOfFlightLine
}
