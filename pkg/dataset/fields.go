package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Columns lists the columns of each record entity in schema order.
var Columns = map[Entity][]string{
	EntityClients: {"ClientID", "ClientName", "PriorityLevel", "RequestedTaskIDs", "GroupTag", "AttributesJSON"},
	EntityWorkers: {"WorkerID", "WorkerName", "Skills", "AvailableSlots", "MaxLoadPerPhase", "WorkerGroup", "QualificationLevel"},
	EntityTasks:   {"TaskID", "TaskName", "Category", "Duration", "RequiredSkills", "PreferredPhases", "MaxConcurrent"},
}

// FieldValue returns the value of column on the record at row, rendered as a
// string. Integer columns are formatted in base 10.
func (ds *DataSet) FieldValue(e Entity, row int, column string) (string, error) {
	if row < 0 || row >= ds.Len(e) {
		return "", fmt.Errorf("row %d out of range for %s (len %d)", row, e, ds.Len(e))
	}

	switch e {
	case EntityClients:
		c := &ds.Clients[row]
		switch column {
		case "ClientID":
			return c.ClientID, nil
		case "ClientName":
			return c.ClientName, nil
		case "PriorityLevel":
			return strconv.Itoa(c.PriorityLevel), nil
		case "RequestedTaskIDs":
			return c.RequestedTaskIDs, nil
		case "GroupTag":
			return c.GroupTag, nil
		case "AttributesJSON":
			return c.AttributesJSON, nil
		}
	case EntityWorkers:
		w := &ds.Workers[row]
		switch column {
		case "WorkerID":
			return w.WorkerID, nil
		case "WorkerName":
			return w.WorkerName, nil
		case "Skills":
			return w.Skills, nil
		case "AvailableSlots":
			return w.AvailableSlots, nil
		case "MaxLoadPerPhase":
			return strconv.Itoa(w.MaxLoadPerPhase), nil
		case "WorkerGroup":
			return w.WorkerGroup, nil
		case "QualificationLevel":
			return strconv.Itoa(w.QualificationLevel), nil
		}
	case EntityTasks:
		t := &ds.Tasks[row]
		switch column {
		case "TaskID":
			return t.TaskID, nil
		case "TaskName":
			return t.TaskName, nil
		case "Category":
			return t.Category, nil
		case "Duration":
			return strconv.Itoa(t.Duration), nil
		case "RequiredSkills":
			return t.RequiredSkills, nil
		case "PreferredPhases":
			return t.PreferredPhases, nil
		case "MaxConcurrent":
			return strconv.Itoa(t.MaxConcurrent), nil
		}
	default:
		return "", fmt.Errorf("unknown entity %q", e)
	}
	return "", fmt.Errorf("unknown column %q for %s", column, e)
}

// SetField assigns value to column on the record at row. String columns
// require a string value; integer columns accept any integral number.
func (ds *DataSet) SetField(e Entity, row int, column string, value any) error {
	if row < 0 || row >= ds.Len(e) {
		return fmt.Errorf("row %d out of range for %s (len %d)", row, e, ds.Len(e))
	}

	switch e {
	case EntityClients:
		c := &ds.Clients[row]
		switch column {
		case "ClientID":
			return setString(&c.ClientID, column, value)
		case "ClientName":
			return setString(&c.ClientName, column, value)
		case "PriorityLevel":
			return setInt(&c.PriorityLevel, column, value)
		case "RequestedTaskIDs":
			return setString(&c.RequestedTaskIDs, column, value)
		case "GroupTag":
			return setString(&c.GroupTag, column, value)
		case "AttributesJSON":
			return setString(&c.AttributesJSON, column, value)
		}
	case EntityWorkers:
		w := &ds.Workers[row]
		switch column {
		case "WorkerID":
			return setString(&w.WorkerID, column, value)
		case "WorkerName":
			return setString(&w.WorkerName, column, value)
		case "Skills":
			return setString(&w.Skills, column, value)
		case "AvailableSlots":
			return setString(&w.AvailableSlots, column, value)
		case "MaxLoadPerPhase":
			return setInt(&w.MaxLoadPerPhase, column, value)
		case "WorkerGroup":
			return setString(&w.WorkerGroup, column, value)
		case "QualificationLevel":
			return setInt(&w.QualificationLevel, column, value)
		}
	case EntityTasks:
		t := &ds.Tasks[row]
		switch column {
		case "TaskID":
			return setString(&t.TaskID, column, value)
		case "TaskName":
			return setString(&t.TaskName, column, value)
		case "Category":
			return setString(&t.Category, column, value)
		case "Duration":
			return setInt(&t.Duration, column, value)
		case "RequiredSkills":
			return setString(&t.RequiredSkills, column, value)
		case "PreferredPhases":
			return setString(&t.PreferredPhases, column, value)
		case "MaxConcurrent":
			return setInt(&t.MaxConcurrent, column, value)
		}
	default:
		return fmt.Errorf("unknown entity %q", e)
	}
	return fmt.Errorf("unknown column %q for %s", column, e)
}

func setString(dst *string, column string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("column %s expects a string, got %T", column, value)
	}
	*dst = s
	return nil
}

func setInt(dst *int, column string, value any) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("column %s expects an integer, got %v", column, v)
		}
		*dst = int(v)
	default:
		return fmt.Errorf("column %s expects an integer, got %T", column, value)
	}
	return nil
}
