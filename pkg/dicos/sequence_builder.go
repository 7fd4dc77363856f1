package dicos

import "fmt"

// SequenceBuilder collects the items of one sequence, such as a Modality,
// VOI or Presentation LUT Sequence, before the sequence is set on a dataset.
// The first item that fails to build is kept and reported by Build.
//
//	sb := dicos.NewSequenceBuilder(tag.VOILUTSequence)
//	for _, l := range voi.LUTs {
//		sb.AddItem(
//			dicos.WithElement(tag.LUTDescriptor, l.Descriptor[:]),
//			dicos.WithElement(tag.LUTData, l.Data),
//		)
//	}
//	opt, err := sb.Build()
type SequenceBuilder struct {
	tag   Tag
	items []*Dataset
	err   error
}

func NewSequenceBuilder(t Tag) *SequenceBuilder {
	return &SequenceBuilder{tag: t}
}

// AddItem appends an item built from opts. Nothing is added once an item
// has failed.
func (sb *SequenceBuilder) AddItem(opts ...Option) *SequenceBuilder {
	if sb.err != nil {
		return sb
	}
	item, err := NewDataset(opts...)
	if err != nil {
		sb.err = fmt.Errorf("item %d: %w", len(sb.items), err)
		return sb
	}
	sb.items = append(sb.items, item)
	return sb
}

// Build returns the Option that sets the sequence on a dataset.
func (sb *SequenceBuilder) Build() (Option, error) {
	if sb.err != nil {
		return nil, fmt.Errorf("sequence %v: %w", sb.tag, sb.err)
	}
	return WithSequence(sb.tag, sb.items...), nil
}
