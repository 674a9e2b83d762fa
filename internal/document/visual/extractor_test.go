package visual

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/document/domain"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *domain.Date {
	return domain.Ptr(domain.MustDate(y, m, d))
}

func str(s string) *string { return &s }

func TestExtractInlineLabels(t *testing.T) {
	t.Run("bilingual labels on the recto", func(t *testing.T) {
		recto := "REPUBLIQUE DU CAMEROUN\n" +
			"CARTE NATIONALE D'IDENTITE\n" +
			"NOM / SURNAME: MIMBE\n" +
			"PRENOMS / GIVEN NAMES: LUCIEN YANNICK\n" +
			"DATE DE NAISSANCE / DATE OF BIRTH: 29.10.1986\n" +
			"SEXE / SEX: M\n"

		rec := Extract(recto, "", now)

		require.True(t, rec.Valid())
		assert.Equal(t, domain.FormatVisual, rec.Format())
		assert.Equal(t, domain.DocumentCNI, rec.DocumentType)
		assert.Equal(t, "CMR", rec.IssuingCountry)
		assert.Equal(t, str("MIMBE"), rec.Surname)
		assert.Equal(t, str("LUCIEN YANNICK"), rec.GivenNames)
		assert.Equal(t, date(1986, time.October, 29), rec.DateOfBirth)
		assert.Equal(t, domain.Ptr(domain.SexMale), rec.Sex)
	})

	t.Run("expiry and unique identifier on the verso", func(t *testing.T) {
		recto := "NOM: KAMENI\nPRENOMS: FRIDE BLANCHE\nDATE DE NAISSANCE: 19/10/1981\n"
		verso := "DATE D'EXPIRATION: 25/04/2035\nIDENTIFIANT UNIQUE: AA10340702\n"

		rec := Extract(recto, verso, now)

		require.True(t, rec.Valid())
		assert.Equal(t, date(1981, time.October, 19), rec.DateOfBirth)
		assert.Equal(t, date(2035, time.April, 25), rec.DateOfExpiry)
		assert.Equal(t, str("AA10340702"), rec.DocumentNumber)
	})

	t.Run("sex and card number", func(t *testing.T) {
		recto := "NOM: DUPONT\nDATE DE NAISSANCE: 01.01.1990\nSEXE: F\n"
		verso := "N° CNI: CMR123456789\nEXPIRE LE: 31.12.2030\n"

		rec := Extract(recto, verso, now)

		require.True(t, rec.Valid())
		assert.Equal(t, domain.Ptr(domain.SexFemale), rec.Sex)
		assert.Equal(t, str("CMR123456789"), rec.DocumentNumber)
		assert.Equal(t, date(2030, time.December, 31), rec.DateOfExpiry)
	})

	t.Run("no labels", func(t *testing.T) {
		rec := Extract("This is just random text without any identity labels\n123 garbage data", "More random text here", now)

		assert.False(t, rec.Valid())
		assert.Nil(t, rec.Surname)
		assert.Equal(t, domain.FormatVisual, rec.Format())
	})

	t.Run("labels without separators", func(t *testing.T) {
		recto := "NOM   MIMBE\nPRENOM   LUCIEN  YANNICK\nDATE DE NAISSANCE  29 10 1986\nSEX  M\n"

		rec := Extract(recto, "", now)

		require.True(t, rec.Valid())
		assert.Equal(t, str("MIMBE"), rec.Surname)
		assert.Equal(t, str("LUCIEN YANNICK"), rec.GivenNames)
		assert.Equal(t, date(1986, time.October, 29), rec.DateOfBirth)
		assert.Equal(t, domain.Ptr(domain.SexMale), rec.Sex)
	})

	t.Run("fields found on the other face", func(t *testing.T) {
		recto := "DATE DE NAISSANCE: 15.03.1975\n"
		verso := "NOM / SURNAME: NGOUMOU\nDATE D'EXPIRATION: 01.01.2028\n"

		rec := Extract(recto, verso, now)

		require.True(t, rec.Valid())
		assert.Equal(t, str("NGOUMOU"), rec.Surname)
		assert.Equal(t, date(1975, time.March, 15), rec.DateOfBirth)
		assert.Equal(t, date(2028, time.January, 1), rec.DateOfExpiry)
	})

	t.Run("dash separated date", func(t *testing.T) {
		rec := Extract("NOM: FOTSO\nDATE DE NAISSANCE: 05-07-1992\n", "", now)

		require.True(t, rec.Valid())
		assert.Equal(t, date(1992, time.July, 5), rec.DateOfBirth)
	})

	t.Run("NOM inside PRENOMS is not a surname label", func(t *testing.T) {
		rec := Extract("PRENOMS: ALICE\n", "", now)

		assert.Nil(t, rec.Surname)
		assert.Equal(t, str("ALICE"), rec.GivenNames)
	})
}

func TestExtractKeywordLines(t *testing.T) {
	t.Run("labels and values on separate lines", func(t *testing.T) {
		recto := "REPUBLIQUE DU CAMEROUN\n" +
			"REPUBLIC OF CAMEROON\n" +
			"NOM/SURNAME\n" +
			"\n" +
			"ETONGO\n" +
			"\n" +
			"PRENOMS/GIVEN NAMES\n" +
			"\n" +
			"PATIAN\n" +
			"\n" +
			"DATE DE NAISSANCE/DATE OF BIRTH\n" +
			"\n" +
			"16.04.1999\n" +
			"\n" +
			"SEXESEX TAILLE HEIGHT\n" +
			"M 1,75\n"

		rec := Extract(recto, "", now)

		require.True(t, rec.Valid())
		assert.Equal(t, str("ETONGO"), rec.Surname)
		assert.Equal(t, str("PATIAN"), rec.GivenNames)
		assert.Equal(t, date(1999, time.April, 16), rec.DateOfBirth)
	})

	t.Run("garbled labels from a preprocessed scan", func(t *testing.T) {
		recto := "NATIONAL IDENTITY-CARD\n" +
			"NATIONALE DIDENTITE\n" +
			"\n" +
			"REPUBLIQUE DU CAMEROUN\n" +
			"REPUBLIC OF CAMEROON\n" +
			"\n" +
			"[NORE EI NP KES\n" +
			"\n" +
			"ETONGO\n" +
			"\n" +
			"PRÉNOMS D MEN NAMES\n" +
			"\n" +
			"PATIAN\n" +
			"\n" +
			"DATE DE MAISSANCE-DATE OF ERT\n" +
			"\n" +
			"16.04.1999\n" +
			"\n" +
			"LIEU DE NAISSANCE PLACE OF 8:75 # A :\n" +
			"\n" +
			"MOUANKO\n" +
			"\n" +
			"SEXESEX TAILLE HEGHT\n" +
			"W 1,75\n"

		rec := Extract(recto, "", now)

		assert.Equal(t, str("PATIAN"), rec.GivenNames)
		assert.Equal(t, date(1999, time.April, 16), rec.DateOfBirth)
	})

	t.Run("concatenated OCR variants", func(t *testing.T) {
		recto := " ETONGO\n" +
			" 16.04.1393\n" +
			" REPUBLIQUE DU CAMEROUN\n" +
			" [NORE EI NP KES\n" +
			" ETONGO\n" +
			" PRÉNOMS D MEN NAMES\n" +
			" PATIAN\n" +
			" DATE DE MAISSANCE-DATE OF ERT\n" +
			" 16.04.1999\n" +
			" SEXESEX TAILLE HEGHT\n" +
			" W 1,75\n" +
			" NOM/SURNAME\n" +
			" ETONGO\n" +
			" PRENOMS/GINEN NAMES\n" +
			" PATIAK\n" +
			" 16.94.1999\n" +
			" SERETSEX\n" +
			" M 1,75\n"
		verso := " 09.05.2019 LT\n 09.05.2029\n"

		rec := Extract(recto, verso, now)

		require.True(t, rec.Valid())
		assert.Equal(t, str("ETONGO"), rec.Surname)
		assert.Equal(t, date(1999, time.April, 16), rec.DateOfBirth)
		assert.Equal(t, date(2029, time.May, 9), rec.DateOfExpiry)
	})
}

func TestExtractDateHeuristic(t *testing.T) {
	recto := "NOM FOTSO\nGARBLED TEXT\n05.07.1992\nSOME MORE TEXT\n"
	verso := "GARBLED\n01.01.2030\n"

	rec := Extract(recto, verso, now)

	require.True(t, rec.Valid())
	assert.Equal(t, str("FOTSO"), rec.Surname)
	assert.Equal(t, date(1992, time.July, 5), rec.DateOfBirth)
	assert.Equal(t, date(2030, time.January, 1), rec.DateOfExpiry)
}

func TestExtractNameCleaning(t *testing.T) {
	t.Run("trailing design noise is dropped", func(t *testing.T) {
		recto := "NOM/SURNAME\n\nETONGO SR LEE\n\nPRENOMS/GIVEN NAMES\n\nPATIAN\n\n16.04.1999\n"

		rec := Extract(recto, "", now)

		require.True(t, rec.Valid())
		assert.Equal(t, str("ETONGO"), rec.Surname)
		assert.Equal(t, str("PATIAN"), rec.GivenNames)
	})

	t.Run("compound names are kept whole", func(t *testing.T) {
		recto := "NOM: KAMENI EPSE MIMBE\nPRENOMS: FRIDE BLANCHE\nDATE DE NAISSANCE: 19.10.1981\n"

		rec := Extract(recto, "", now)

		assert.Equal(t, str("KAMENI EPSE MIMBE"), rec.Surname)
		assert.Equal(t, str("FRIDE BLANCHE"), rec.GivenNames)
	})
}

func TestExtractPositionalGivenNames(t *testing.T) {
	recto := "NOM/SURNAME\n\nETONGO\n\nR1 DG PK MN\n\nPATIAN\n\n16.04.1999\n"

	rec := Extract(recto, "", now)

	require.True(t, rec.Valid())
	assert.Equal(t, str("ETONGO"), rec.Surname)
	assert.Equal(t, str("PATIAN"), rec.GivenNames)
	assert.Equal(t, date(1999, time.April, 16), rec.DateOfBirth)
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"ETONGO SR LEE":     "ETONGO",
		"LUCIEN YANNICK":    "LUCIEN YANNICK",
		"KAMENI EPSE MIMBE": "KAMENI EPSE MIMBE",
		"DE LA FONTAINE":    "DE LA FONTAINE",
		"R DG PK MN":        "",
		"X MBARGA":          "MBARGA",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, cleanName(in))
		})
	}
}

func TestContainsKeyword(t *testing.T) {
	assert.True(t, containsKeyword("NOM/SURNAME", "NOM"))
	assert.True(t, containsKeyword("PRÉNOMS D MEN NAMES", "PRENOM"))
	assert.False(t, containsKeyword("PRÉNOMS D MEN NAMES", "NOM"))
	assert.True(t, containsKeyword("[NOM] AND PRENOMS", "NOM"))
	assert.True(t, containsKeyword("DATE DE MAISSANCE", "AISSANCE"))
}

func TestLooksLikeLabel(t *testing.T) {
	assert.True(t, looksLikeLabel("SEXESEX TAILLE HEIGHT"))
	assert.False(t, looksLikeLabel("PATIAN"))
}
