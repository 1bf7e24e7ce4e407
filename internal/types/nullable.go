package types

import "encoding/json"

// NullableUint distinguishes an absent JSON field from an explicit null.
// Absent: Set=false. Null: Set=true, Value=nil. Number: Set=true, Value set.
// Used for task assignee updates, where null means "unassign" and absence
// means "leave unchanged".
type NullableUint struct {
	Set   bool
	Value *uint
}

func (n *NullableUint) UnmarshalJSON(data []byte) error {
	n.Set = true

	if string(data) == "null" {
		n.Value = nil
		return nil
	}

	var v uint
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	n.Value = &v
	return nil
}
