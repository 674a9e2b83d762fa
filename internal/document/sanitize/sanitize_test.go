package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeContexts(t *testing.T) {
	tests := []struct {
		name string
		line string
		ctx  FieldContext
		want string
	}{
		{"name digits become look-alike letters", "MIMB3<<1UC1EN", ContextName, "MIMBB<<IUCIEN"},
		{"name digits that resemble filler become filler", "MIMBE4<LUCIEN797", ContextName, "MIMBE<<LUCIEN<<<"},
		{"numeric letters become look-alike digits", "B6IOI9", ContextNumeric, "861019"},
		{"numeric keeps filler", "35O4<0", ContextNumeric, "3504<0"},
		{"unknown letter in numeric context falls back to zero", "12X4", ContextNumeric, "1204"},
		{"mixed is untouched", "AB12345O7", ContextMixed, "AB12345O7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.line, tt.ctx))
		})
	}
}

func TestSanitizeSpans(t *testing.T) {
	// TD1 line 2 with OCR damage in dates, sex and nationality.
	line := "B6IOI9IM35O42OIC4R<<<<<<<<<<<7"
	got := Default.SanitizeSpans(line, []Span{
		{Start: 0, Len: 7, Context: ContextNumeric},
		{Start: 7, Len: 1, Context: ContextName},
		{Start: 8, Len: 7, Context: ContextNumeric},
		{Start: 15, Len: 3, Context: ContextName},
		{Start: 29, Len: 5, Context: ContextNumeric},
	})
	assert.Equal(t, "8610191M3504201C<R<<<<<<<<<<<7", got)
}

func TestSanitizeSpansNameWithTrailingPadding(t *testing.T) {
	nameLine := []Span{
		{Start: 0, Len: 30, Context: ContextName},
		{Start: 0, Len: 30, Context: ContextTrailing},
	}
	tests := []struct {
		name string
		line string
		want string
	}{
		{"digits inside the name are letters", "MIMB3<<LUC1EN<YANNICK<<<<<<<<<", "MIMBB<<LUCIEN<YANNICK<<<<<<<<<"},
		{"digits in the padding are filler", "MIMBE<<LUCIEN<YANNICK<<<<1<<<<", "MIMBE<<LUCIEN<YANNICK<<<<<<<<<"},
		{"digit glued to the name is a letter", "NGONO<<PAUL5<<<<<<<LLLLLLLLLLL", "NGONO<<PAULS" + strings.Repeat("<", 18)},
		{"noise after a name ending in L", "NGONO<<PAUL<<<<<<<<<" + strings.Repeat("L", 10), "NGONO<<PAUL" + strings.Repeat("<", 19)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.line, 30)
			assert.Equal(t, tt.want, Default.SanitizeSpans(tt.line, nameLine))
		})
	}
}

func TestRestoreTrailingFillers(t *testing.T) {
	const clean = "P<CMRMIMBE<<LUCIEN<YANNICK<<<<<<<<<<<<<<<<<<"

	t.Run("clean line is unchanged", func(t *testing.T) {
		assert.Equal(t, clean, Default.RestoreTrailingFillers(clean, 5))
	})

	t.Run("fillers misread as L S C restore to the clean line", func(t *testing.T) {
		noisy := "P<CMRMIMBE<<LUCIEN<YANNICK<LLLLSLLLCLLLLLLLL"
		require.Len(t, noisy, len(clean))
		assert.Equal(t, clean, Default.RestoreTrailingFillers(noisy, 5))
	})

	t.Run("noise glued to the name keeps name letters ending in C and K", func(t *testing.T) {
		noisy := "P<CMRMIMBE<<LUCIEN<YANNICKLLLLLLLLLLLLLLLLLL"
		require.Len(t, noisy, len(clean))
		assert.Equal(t, clean, Default.RestoreTrailingFillers(noisy, 5))
	})

	t.Run("compound names are untouched", func(t *testing.T) {
		line := "KAMENI<EPSE<MIMBE<<FRIDE<BLANCHE<<<<<<<<<<<"
		assert.Equal(t, line, Default.RestoreTrailingFillers(line, 0))
	})

	t.Run("short trailing noise is left alone", func(t *testing.T) {
		line := "NICOLAS<<PAUL<<<LL<<<<"
		assert.Equal(t, line, Default.RestoreTrailingFillers(line, 0))
	})

	t.Run("run without a dominant L is left alone", func(t *testing.T) {
		line := "DUPONT<<JEAN<SSSCCKKSL"
		assert.Equal(t, line, Default.RestoreTrailingFillers(line, 0))
	})

	t.Run("never reaches into the prefix", func(t *testing.T) {
		line := "LLLLLLLL"
		assert.Equal(t, "LL<<<<<<", Default.RestoreTrailingFillers(line, 2))
	})

	t.Run("noisy padding after names ending in noise letters", func(t *testing.T) {
		tests := []struct {
			name  string
			noisy string
			want  string
		}{
			{"name ending in L", "NGONO<<PAUL<<<<<<<<<" + strings.Repeat("L", 10), "NGONO<<PAUL" + strings.Repeat("<", 19)},
			{"name ending in L before a single filler", "NGONO<<MICHEL<" + strings.Repeat("L", 16), "NGONO<<MICHEL" + strings.Repeat("<", 17)},
			{"name ending in S", "ATANGANA<<NICOLAS<" + strings.Repeat("L", 12), "ATANGANA<<NICOLAS" + strings.Repeat("<", 13)},
			{"name ending in C", "BIYA<<MARC<LLLLSLLLLLLLLCLLLL", "BIYA<<MARC" + strings.Repeat("<", 19)},
			{"surname only", "NGONO<<<<<<" + strings.Repeat("L", 19), "NGONO" + strings.Repeat("<", 25)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				require.Len(t, tt.want, len(tt.noisy))
				assert.Equal(t, tt.want, Default.RestoreTrailingFillers(tt.noisy, 0))
			})
		}
	})

	t.Run("stray digits in the padding become filler", func(t *testing.T) {
		assert.Equal(t, "MIMBE<<LUCIEN<YANNICK<<<<<<<<<",
			Default.RestoreTrailingFillers("MIMBE<<LUCIEN<YANNICK<<<<1<<<<", 0))
		assert.Equal(t, "MIMBE<<LUCIEN<YANNICK<<<<<<<<<",
			Default.RestoreTrailingFillers("MIMBE<<LUCIEN<YANNICK<L7LLLSLL", 0))
	})

	t.Run("idempotent", func(t *testing.T) {
		noisy := "MIMBE<<LUCIEN<YANNICK<LLLL<LLL"
		once := Default.RestoreTrailingFillers(noisy, 0)
		assert.Equal(t, once, Default.RestoreTrailingFillers(once, 0))
		assert.Equal(t, "MIMBE<<LUCIEN<YANNICK"+strings.Repeat("<", 9), once)
	})
}

func TestOverrides(t *testing.T) {
	t.Run("extends the tables", func(t *testing.T) {
		o, err := LoadOverrides(strings.NewReader(`
name:
  "4": "A"
numeric:
  "U": "0"
filler_noise: "LSCKE"
`))
		require.NoError(t, err)

		s, err := New(o)
		require.NoError(t, err)
		assert.Equal(t, "MARIA", s.Sanitize("M4RI4", ContextName))
		assert.Equal(t, "1000", s.Sanitize("1UUU", ContextNumeric))
		assert.Equal(t, "M<RI<", Default.Sanitize("M4RI4", ContextName), "default tables are not mutated")

		restored := s.RestoreTrailingFillers("DUPONT<<JEAN<LELLLLE", 0)
		assert.Equal(t, "DUPONT<<JEAN<<<<<<<<", restored)
	})

	t.Run("rejects multi-character mappings", func(t *testing.T) {
		_, err := New(Overrides{Name: map[string]string{"44": "A"}})
		require.Error(t, err)
	})

	t.Run("rejects a digit as a name substitute", func(t *testing.T) {
		_, err := New(Overrides{Name: map[string]string{"4": "7"}})
		require.Error(t, err)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := LoadOverrides(strings.NewReader("letters: {}\n"))
		require.Error(t, err)
	})

	t.Run("empty document is allowed", func(t *testing.T) {
		o, err := LoadOverrides(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, o.Name)
	})

	t.Run("empty path returns the default sanitizer", func(t *testing.T) {
		s, err := FromFile("")
		require.NoError(t, err)
		assert.Same(t, Default, s)
	})
}
