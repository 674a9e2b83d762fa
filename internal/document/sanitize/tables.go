package sanitize

// OCR confusions seen on MRZ fonts. A position that must hold a letter is
// mapped through nameTable; one that must hold a digit through numericTable.
// Filler is always legal in both contexts.
var (
	nameTable = map[byte]byte{
		'0': 'O',
		'1': 'I',
		'2': 'Z',
		'3': 'B',
		'4': Filler,
		'5': 'S',
		'6': 'G',
		'7': Filler,
		'8': 'B',
		'9': Filler,
	}

	numericTable = map[byte]byte{
		'O': '0',
		'Q': '0',
		'D': '0',
		'I': '1',
		'L': '1',
		'Z': '2',
		'B': '8',
		'S': '5',
		'G': '6',
		'A': '4',
		'T': '7',
	}

	// Letters that a run of misread fillers decays into. The dominant one
	// must make up at least half of a run before it is restored.
	fillerNoise    = "LSCK"
	dominantFiller = byte('L')
)

const (
	// Filler is the ICAO padding character.
	Filler = '<'

	nameFallback    = Filler
	numericFallback = '0'

	// minNoiseLetters is the shortest run of misread fillers worth restoring.
	// Shorter runs are indistinguishable from the end of a real name.
	minNoiseLetters = 5
)
