package domain

// Field identifies one counter column of the snapshot schema.
type Field int

const (
	Confirmed Field = iota
	Active
	Discharged
	Deaths
	Vaccinations
)

// FieldCount is the number of counters every snapshot row carries.
const FieldCount = 5

// Fields is the fixed column order of the snapshot schema.
var Fields = [FieldCount]Field{Confirmed, Active, Discharged, Deaths, Vaccinations}

// NationalFields is the order of the dashboard's total and increase counters.
// Vaccinations is published by a separate widget and appended after these.
var NationalFields = [4]Field{Confirmed, Active, Discharged, Deaths}

var fieldNames = [FieldCount]string{"Confirmed", "Active", "Discharged", "Deaths", "Vaccinations"}

func (f Field) String() string {
	if f < 0 || int(f) >= FieldCount {
		return "Field(?)"
	}
	return fieldNames[f]
}

// FieldNames returns the column header names in schema order.
func FieldNames() []string {
	names := make([]string, FieldCount)
	copy(names, fieldNames[:])
	return names
}

// Counts holds the five counters of a row, indexed by Field.
type Counts [FieldCount]uint64

// Get returns the counter for f.
func (c Counts) Get(f Field) uint64 {
	return c[f]
}
