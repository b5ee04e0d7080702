package storage

import (
	"encoding/json"
	"fmt"

	"github.com/papercomputeco/dossier/pkg/registry"
)

// Bucket names used by the key-value style drivers (sqlite, postgres, redis).
const (
	BucketPeople  = "people"
	BucketReports = "reports"
)

// EncodeBuckets splits a snapshot into one JSON payload per bucket.
func EncodeBuckets(snapshot registry.Snapshot) (map[string][]byte, error) {
	people := snapshot.People
	if people == nil {
		people = []registry.Person{}
	}
	reports := snapshot.Reports
	if reports == nil {
		reports = []registry.Report{}
	}

	peopleJSON, err := json.Marshal(people)
	if err != nil {
		return nil, fmt.Errorf("encoding people: %w", err)
	}
	reportsJSON, err := json.Marshal(reports)
	if err != nil {
		return nil, fmt.Errorf("encoding reports: %w", err)
	}

	return map[string][]byte{
		BucketPeople:  peopleJSON,
		BucketReports: reportsJSON,
	}, nil
}

// DecodeBuckets rebuilds a snapshot from bucket payloads. Missing buckets are
// treated as empty and unknown buckets are ignored.
func DecodeBuckets(buckets map[string][]byte) (registry.Snapshot, error) {
	snapshot := registry.Snapshot{
		People:  []registry.Person{},
		Reports: []registry.Report{},
	}

	if payload, ok := buckets[BucketPeople]; ok && len(payload) > 0 {
		if err := json.Unmarshal(payload, &snapshot.People); err != nil {
			return registry.Snapshot{}, CorruptError{Bucket: BucketPeople, Err: err}
		}
	}
	if payload, ok := buckets[BucketReports]; ok && len(payload) > 0 {
		if err := json.Unmarshal(payload, &snapshot.Reports); err != nil {
			return registry.Snapshot{}, CorruptError{Bucket: BucketReports, Err: err}
		}
	}

	return snapshot, nil
}
