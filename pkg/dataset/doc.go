// Package dataset defines the three-entity business dataset (clients,
// workers, tasks) consumed by the validators.
//
// A DataSet is a plain value owned by the caller. Validators read it and never
// write to it; Normalize and the fixes package return modified copies instead.
//
// Datasets are loaded from YAML or JSON documents whose record keys match the
// column names exactly:
//
//	clients:
//	  - ClientID: C1
//	    ClientName: Acme
//	    PriorityLevel: 3
//	    RequestedTaskIDs: T1,T2
//	workers:
//	  - WorkerID: W1
//	    Skills: go,sql
//	    AvailableSlots: "[1,2,3]"
//	    MaxLoadPerPhase: 2
//	tasks:
//	  - TaskID: T1
//	    Duration: 2
//	    RequiredSkills: go
//	    PreferredPhases: 1-2
//	    MaxConcurrent: 1
package dataset
