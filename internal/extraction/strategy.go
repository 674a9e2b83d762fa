package extraction

import (
	"context"
	"errors"
	"strings"
	"time"

	"docverify/internal/document/domain"
	"docverify/internal/document/mrz"
	"docverify/internal/document/vision"
	"docverify/internal/document/visual"
)

// ErrNoInput marks a strategy that had nothing to read. The chain records it
// as skipped rather than failed.
var ErrNoInput = errors.New("no input for strategy")

// Input carries everything capture and OCR produced for one document.
type Input struct {
	// DocumentType is what the user declared, used to pick the MRZ face.
	DocumentType string
	MRZ          string
	RectoText    string
	VersoText    string
	VisionJSON   string
	RectoImage   *vision.Image
	VersoImage   *vision.Image
}

// Strategy turns an Input into a record. Local strategies never fail; only
// ErrNoInput is expected from them.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, in Input, now time.Time) (*domain.ExtractedIdentity, error)
}

// Strategy names, also used as metric labels.
const (
	StrategyMRZ    = "mrz"
	StrategyVisual = "visual"
	StrategyVision = "vision"
)

type mrzStrategy struct {
	parser *mrz.Parser
}

// MRZStrategy reads the machine-readable zone. An explicit MRZ input wins;
// otherwise the face that carries the zone for the declared type is tried
// first, then the other face.
func MRZStrategy(p *mrz.Parser) Strategy {
	if p == nil {
		p = mrz.New(nil)
	}
	return mrzStrategy{parser: p}
}

func (mrzStrategy) Name() string { return StrategyMRZ }

func (s mrzStrategy) Extract(_ context.Context, in Input, now time.Time) (*domain.ExtractedIdentity, error) {
	candidates := in.mrzCandidates()
	if len(candidates) == 0 {
		return nil, ErrNoInput
	}
	for _, text := range candidates {
		if _, ok := mrz.Detect(mrz.ExtractLines(text)); ok {
			return s.parser.Parse(text, now), nil
		}
	}
	return s.parser.Parse(candidates[0], now), nil
}

func (in Input) mrzCandidates() []string {
	var ordered []string
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(in.DocumentType)), string(domain.DocumentPassport)) {
		ordered = []string{in.MRZ, in.RectoText, in.VersoText}
	} else {
		ordered = []string{in.MRZ, in.VersoText, in.RectoText}
	}
	out := ordered[:0]
	for _, s := range ordered {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	if strings.TrimSpace(in.MRZ) != "" {
		return out[:1]
	}
	return out
}

type visualStrategy struct{}

// VisualStrategy reads the printed labels of both faces.
func VisualStrategy() Strategy { return visualStrategy{} }

func (visualStrategy) Name() string { return StrategyVisual }

func (visualStrategy) Extract(_ context.Context, in Input, now time.Time) (*domain.ExtractedIdentity, error) {
	if strings.TrimSpace(in.RectoText) == "" && strings.TrimSpace(in.VersoText) == "" {
		return nil, ErrNoInput
	}
	return visual.Extract(in.RectoText, in.VersoText, now), nil
}

// Reader asks a vision model to read the card images.
type Reader interface {
	Read(ctx context.Context, recto vision.Image, verso *vision.Image) (string, error)
}

type visionStrategy struct {
	reader Reader
}

// VisionStrategy parses a supplied model answer, or asks reader for one
// when images are available. reader may be nil.
func VisionStrategy(reader Reader) Strategy {
	return visionStrategy{reader: reader}
}

func (visionStrategy) Name() string { return StrategyVision }

func (s visionStrategy) Extract(ctx context.Context, in Input, _ time.Time) (*domain.ExtractedIdentity, error) {
	if strings.TrimSpace(in.VisionJSON) != "" {
		return vision.ParseJSON(in.VisionJSON), nil
	}
	if s.reader == nil || in.RectoImage == nil || len(in.RectoImage.Data) == 0 {
		return nil, ErrNoInput
	}
	answer, err := s.reader.Read(ctx, *in.RectoImage, in.VersoImage)
	if err != nil {
		return nil, err
	}
	return vision.ParseJSON(answer), nil
}
