package labels

// Select returns the UIDs of messages carrying at least one triggering flag.
// The order of msgs is kept and no UID is returned twice.
func Select(msgs []Message) []uint32 {
	triggering := Triggering()

	var selected []uint32
	seen := make(map[uint32]bool, len(msgs))
	for _, m := range msgs {
		if seen[m.UID] {
			continue
		}
		if m.Labels.HasAny(triggering...) {
			seen[m.UID] = true
			selected = append(selected, m.UID)
		}
	}
	return selected
}
