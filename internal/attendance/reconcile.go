package attendance

// Reconcile merges incoming into existing by composite key. Existing records
// are visited first, then incoming; a later record with the same key replaces
// the earlier one in place, so each key keeps the position it was first seen at.
func Reconcile(existing, incoming []AttendanceRecord) []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	upsert := func(r AttendanceRecord) {
		k := r.Key()
		if i, ok := index[k]; ok {
			out[i] = r
			return
		}
		index[k] = len(out)
		out = append(out, r)
	}

	for _, r := range existing {
		upsert(r)
	}
	for _, r := range incoming {
		upsert(r)
	}
	return out
}
