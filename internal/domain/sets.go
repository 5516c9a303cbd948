package domain

// Tags is an ordered, de-duplicated, lower-cased tag list.
type Tags []string

// IDSet is an ordered list of identities without duplicates.
type IDSet []string

func (s IDSet) Contains(id string) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}

// Add returns the set with id appended, or s unchanged when id is already present.
func (s IDSet) Add(id string) IDSet {
	if id == "" || s.Contains(id) {
		return s
	}
	out := make(IDSet, len(s), len(s)+1)
	copy(out, s)
	return append(out, id)
}
