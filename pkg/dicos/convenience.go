package dicos

// GetSequenceItems returns the items of sequence t, or nil when t is absent
// or not a sequence.
//
//	for i, item := range dicos.GetSequenceItems(ds, tag.VOILUTSequence) {
//		desc, _ := item.Find(tag.LUTDescriptor)
//		fmt.Printf("VOI LUT %d: %v\n", i, desc.Value)
//	}
func GetSequenceItems(ds *Dataset, t Tag) []*Dataset {
	elem, ok := ds.Find(t)
	if !ok {
		return nil
	}
	items, _ := elem.Value.([]*Dataset)
	return items
}
