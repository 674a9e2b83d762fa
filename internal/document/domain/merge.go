package domain

// Merge copies every field that is nil in target and present in source.
// Present target fields are never overwritten; format and validity are left
// as they are. A nil target is a caller bug.
func Merge(target, source *ExtractedIdentity) {
	if target == nil {
		panic("domain.Merge: nil target")
	}
	if source == nil {
		return
	}
	fill(&target.Surname, source.Surname)
	fill(&target.GivenNames, source.GivenNames)
	fill(&target.DateOfBirth, source.DateOfBirth)
	fill(&target.DateOfExpiry, source.DateOfExpiry)
	fill(&target.DocumentNumber, source.DocumentNumber)
	fill(&target.Sex, source.Sex)
}

func fill[T any](dst **T, src *T) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}
