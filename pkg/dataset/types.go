package dataset

import (
	"fmt"
	"slices"
)

// Entity names one of the three record collections of a DataSet.
// EntityGeneral and EntityRules tag findings that do not belong to a record.
type Entity string

const (
	EntityClients Entity = "clients"
	EntityWorkers Entity = "workers"
	EntityTasks   Entity = "tasks"
	EntityGeneral Entity = "general"
	EntityRules   Entity = "rules"
)

// RecordEntities lists the entities that hold records, in validation order.
var RecordEntities = []Entity{EntityClients, EntityWorkers, EntityTasks}

// ParseEntity converts a string into a record Entity.
func ParseEntity(s string) (Entity, error) {
	switch Entity(s) {
	case EntityClients, EntityWorkers, EntityTasks:
		return Entity(s), nil
	default:
		return "", fmt.Errorf("unknown entity %q (valid: clients, workers, tasks)", s)
	}
}

// IDColumn returns the name of the identifier column for a record entity.
func (e Entity) IDColumn() string {
	switch e {
	case EntityClients:
		return "ClientID"
	case EntityWorkers:
		return "WorkerID"
	case EntityTasks:
		return "TaskID"
	default:
		return ""
	}
}

// NameColumn returns the name of the display-name column for a record entity.
func (e Entity) NameColumn() string {
	switch e {
	case EntityClients:
		return "ClientName"
	case EntityWorkers:
		return "WorkerName"
	case EntityTasks:
		return "TaskName"
	default:
		return ""
	}
}

// Client is a customer requesting tasks.
type Client struct {
	ClientID         string `yaml:"ClientID" json:"ClientID"`
	ClientName       string `yaml:"ClientName" json:"ClientName"`
	PriorityLevel    int    `yaml:"PriorityLevel" json:"PriorityLevel"`
	RequestedTaskIDs string `yaml:"RequestedTaskIDs" json:"RequestedTaskIDs"`
	GroupTag         string `yaml:"GroupTag" json:"GroupTag"`
	AttributesJSON   string `yaml:"AttributesJSON" json:"AttributesJSON"`
}

// Worker is a resource that can be allocated to tasks in the phases it is
// available for.
type Worker struct {
	WorkerID           string `yaml:"WorkerID" json:"WorkerID"`
	WorkerName         string `yaml:"WorkerName" json:"WorkerName"`
	Skills             string `yaml:"Skills" json:"Skills"`
	AvailableSlots     string `yaml:"AvailableSlots" json:"AvailableSlots"`
	MaxLoadPerPhase    int    `yaml:"MaxLoadPerPhase" json:"MaxLoadPerPhase"`
	WorkerGroup        string `yaml:"WorkerGroup" json:"WorkerGroup"`
	QualificationLevel int    `yaml:"QualificationLevel" json:"QualificationLevel"`
}

// Task is a unit of work spanning Duration phases.
type Task struct {
	TaskID          string `yaml:"TaskID" json:"TaskID"`
	TaskName        string `yaml:"TaskName" json:"TaskName"`
	Category        string `yaml:"Category" json:"Category"`
	Duration        int    `yaml:"Duration" json:"Duration"`
	RequiredSkills  string `yaml:"RequiredSkills" json:"RequiredSkills"`
	PreferredPhases string `yaml:"PreferredPhases" json:"PreferredPhases"`
	MaxConcurrent   int    `yaml:"MaxConcurrent" json:"MaxConcurrent"`
}

// DataSet is the input to one validation pass. Validators never modify it;
// callers replace it wholesale after applying fixes.
type DataSet struct {
	Clients []Client `yaml:"clients" json:"clients"`
	Workers []Worker `yaml:"workers" json:"workers"`
	Tasks   []Task   `yaml:"tasks" json:"tasks"`
}

// EntityCounts holds the number of records per entity.
type EntityCounts struct {
	Clients int `json:"clients"`
	Workers int `json:"workers"`
	Tasks   int `json:"tasks"`
}

// Counts returns the number of records in each collection.
func (ds *DataSet) Counts() EntityCounts {
	if ds == nil {
		return EntityCounts{}
	}
	return EntityCounts{
		Clients: len(ds.Clients),
		Workers: len(ds.Workers),
		Tasks:   len(ds.Tasks),
	}
}

// Len returns the number of records for an entity.
func (ds *DataSet) Len(e Entity) int {
	switch e {
	case EntityClients:
		return len(ds.Clients)
	case EntityWorkers:
		return len(ds.Workers)
	case EntityTasks:
		return len(ds.Tasks)
	default:
		return 0
	}
}

// RecordID returns the identifier of the record at row.
func (ds *DataSet) RecordID(e Entity, row int) string {
	if row < 0 || row >= ds.Len(e) {
		return ""
	}
	switch e {
	case EntityClients:
		return ds.Clients[row].ClientID
	case EntityWorkers:
		return ds.Workers[row].WorkerID
	case EntityTasks:
		return ds.Tasks[row].TaskID
	default:
		return ""
	}
}

// Clone returns a deep copy of the dataset.
func (ds *DataSet) Clone() *DataSet {
	if ds == nil {
		return &DataSet{}
	}
	return &DataSet{
		Clients: slices.Clone(ds.Clients),
		Workers: slices.Clone(ds.Workers),
		Tasks:   slices.Clone(ds.Tasks),
	}
}
