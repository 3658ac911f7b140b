package models

import "strconv"

// FileRecord is one file entry from a device snapshot.
// Records are created by the listing parser and never modified afterwards.
type FileRecord struct {
	// ID is the device-assigned object id (unique within a snapshot)
	ID int64 `json:"id" yaml:"id"`

	// Name is the file name reported by the device (not unique, may be empty)
	Name string `json:"name" yaml:"name"`

	// Size is the file size in bytes, nil when the snapshot omits it
	Size *int64 `json:"size,omitempty" yaml:"size,omitempty"`

	// ParentID references the containing folder's record, nil when absent
	ParentID *int64 `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// HasSize reports whether the snapshot carried a size for this record.
func (r FileRecord) HasSize() bool {
	return r.Size != nil
}

// HasParent reports whether the snapshot carried a parent id for this record.
func (r FileRecord) HasParent() bool {
	return r.ParentID != nil
}

// LocalName returns the file name used when the record is written to disk.
// Records without a name fall back to their numeric id.
func (r FileRecord) LocalName() string {
	if r.Name == "" {
		return strconv.FormatInt(r.ID, 10)
	}
	return r.Name
}
