package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"carvy-clinic/internal/storage"
)

// Collection names. Every collection has its own id counter.
const (
	CollectionUsers         = "users"
	CollectionDoctors       = "doctors"
	CollectionPatients      = "patients"
	CollectionConsultations = "consultations"
	CollectionPrescriptions = "prescriptions"
)

// DefaultStorageKey is the slot the database persists into.
const DefaultStorageKey = "carvy_database"

// evictionLimit is how many consultation and prescription records survive a
// quota-exceeded save.
const evictionLimit = 100

// backupVersion tags exported backups.
const backupVersion = "1.0"

// ErrNotFound is returned by id-based lookups when no document matches.
var ErrNotFound = errors.New("document not found")

// Document is one schemaless record. Every stored document carries "id",
// "createdAt" and "updatedAt"; everything else is up to the caller, and the
// store never validates fields. Callers should treat documents returned from
// reads as read-only.
type Document map[string]any

// Database is an in-memory collection store with auto-incrementing integer
// ids, persisted in full to a single storage slot after every mutation. It is
// not safe for concurrent use; a single caller owns it for the session.
type Database struct {
	store       storage.Storage
	storageKey  string
	collections map[string][]Document
	counters    map[string]int
	lastSaved   string
}

// persistedState is the on-disk layout of the storage slot.
type persistedState struct {
	Collections map[string][]Document `json:"collections"`
	Counters    map[string]int        `json:"counters"`
	LastSaved   string                `json:"lastSaved"`
}

// Backup is the export/import layout: the persisted state minus lastSaved,
// plus a version tag.
type Backup struct {
	Collections map[string][]Document `json:"collections"`
	Counters    map[string]int        `json:"counters"`
	ExportedAt  string                `json:"exportedAt"`
	Version     string                `json:"version"`
}

// New opens a database over the given storage, restoring any persisted state.
// A missing or corrupt slot silently yields an empty database.
func New(store storage.Storage) *Database {
	db := &Database{
		store:      store,
		storageKey: DefaultStorageKey,
	}
	db.loadFromStorage()
	return db
}

func defaultCollections() map[string][]Document {
	return map[string][]Document{
		CollectionUsers:         {},
		CollectionDoctors:       {},
		CollectionPatients:      {},
		CollectionConsultations: {},
		CollectionPrescriptions: {},
	}
}

func defaultCounters() map[string]int {
	return map[string]int{
		CollectionUsers:         0,
		CollectionDoctors:       0,
		CollectionPatients:      0,
		CollectionConsultations: 0,
		CollectionPrescriptions: 0,
	}
}

// IsEmpty reports whether every collection is empty.
func (db *Database) IsEmpty() bool {
	for _, docs := range db.collections {
		if len(docs) > 0 {
			return false
		}
	}
	return true
}

func (db *Database) loadFromStorage() {
	db.collections = defaultCollections()
	db.counters = defaultCounters()
	db.lastSaved = ""

	raw, ok, err := db.store.GetItem(db.storageKey)
	if err != nil {
		log.Printf("Error reading persisted state, starting empty: %v", err)
		return
	}
	if !ok {
		return
	}

	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		log.Printf("Error decoding persisted state, starting empty: %v", err)
		return
	}
	db.adoptState(state.Collections, state.Counters)
	db.lastSaved = state.LastSaved
}

// adoptState merges persisted collections and counters over the defaults and
// rehydrates the JSON-flattened values.
func (db *Database) adoptState(collections map[string][]Document, counters map[string]int) {
	db.collections = defaultCollections()
	db.counters = defaultCounters()
	for name := range db.collections {
		if docs, ok := collections[name]; ok && docs != nil {
			db.collections[name] = docs
		}
	}
	for name := range db.counters {
		if n, ok := counters[name]; ok {
			db.counters[name] = n
		}
	}
	for _, docs := range db.collections {
		for _, doc := range docs {
			hydrateDocument(doc)
		}
	}
}

// Date-typed fields restored on load.
var dateFields = []string{"createdAt", "updatedAt", "date"}

// hydrateDocument restores the types JSON flattens: date fields come back as
// RFC 3339 strings and every number comes back as float64.
func hydrateDocument(doc Document) {
	for _, field := range dateFields {
		if s, ok := doc[field].(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				doc[field] = t
			}
		}
	}
	for key, value := range doc {
		if f, ok := value.(float64); ok && f == math.Trunc(f) {
			doc[key] = int(f)
		}
	}
}

// saveToStorage writes the full state to the storage slot. A quota-exceeded
// write evicts old records once and retries; any other failure is logged and
// the in-memory state stays authoritative for the session.
func (db *Database) saveToStorage() {
	state := persistedState{
		Collections: db.collections,
		Counters:    db.counters,
		LastSaved:   time.Now().Format(time.RFC3339Nano),
	}
	raw, err := json.Marshal(state)
	if err != nil {
		log.Printf("Error encoding state: %v", err)
		return
	}

	err = db.store.SetItem(db.storageKey, raw)
	if errors.Is(err, storage.ErrQuotaExceeded) {
		db.evictOldRecords()
		state.Collections = db.collections
		raw, err = json.Marshal(state)
		if err != nil {
			log.Printf("Error encoding state after eviction: %v", err)
			return
		}
		err = db.store.SetItem(db.storageKey, raw)
	}
	if err != nil {
		log.Printf("Error persisting state: %v", err)
		return
	}
	db.lastSaved = state.LastSaved
}

// evictOldRecords keeps only the most recently created consultations and
// prescriptions when storage runs out of room.
func (db *Database) evictOldRecords() {
	for _, name := range []string{CollectionConsultations, CollectionPrescriptions} {
		docs := db.collections[name]
		if len(docs) <= evictionLimit {
			continue
		}
		sorted := make([]Document, len(docs))
		copy(sorted, docs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return docTime(sorted[i], "createdAt").After(docTime(sorted[j], "createdAt"))
		})
		db.collections[name] = sorted[:evictionLimit]
		log.Printf("Storage quota exceeded, keeping the %d most recent %s", evictionLimit, name)
	}
}

// nextID allocates the next integer id for a collection. Ids start at 1 and
// are never reused, even after deletions.
func (db *Database) nextID(collection string) int {
	db.counters[collection]++
	return db.counters[collection]
}

// Insert appends a new document built from fields, assigning the next id and
// stamping createdAt (unless provided) and updatedAt. No validation is
// performed; required-field and uniqueness checks belong to the caller.
func (db *Database) Insert(collection string, fields Document) int {
	id := db.nextID(collection)
	doc := Document{}
	for key, value := range fields {
		doc[key] = value
	}
	doc["id"] = id
	if v, ok := doc["createdAt"]; !ok || v == nil {
		doc["createdAt"] = time.Now()
	}
	doc["updatedAt"] = time.Now()
	db.collections[collection] = append(db.collections[collection], doc)
	db.saveToStorage()
	return id
}

// Find returns every document matching the query in insertion order. An empty
// query returns the whole collection.
func (db *Database) Find(collection string, query Document) []Document {
	var results []Document
	for _, doc := range db.collections[collection] {
		if matches(doc, query) {
			results = append(results, doc)
		}
	}
	return results
}

// FindOne returns the first document matching the query, or ErrNotFound.
func (db *Database) FindOne(collection string, query Document) (Document, error) {
	for _, doc := range db.collections[collection] {
		if matches(doc, query) {
			return doc, nil
		}
	}
	return nil, ErrNotFound
}

// FindByID returns the document whose id equals the integer-coerced form of
// id (numeric strings are accepted), or ErrNotFound.
func (db *Database) FindByID(collection string, id any) (Document, error) {
	doc, _, err := db.findIndexByID(collection, id)
	return doc, err
}

func (db *Database) findIndexByID(collection string, id any) (Document, int, error) {
	want, ok := toInt(id)
	if !ok {
		return nil, -1, ErrNotFound
	}
	for i, doc := range db.collections[collection] {
		if got, ok := toInt(doc["id"]); ok && got == want {
			return doc, i, nil
		}
	}
	return nil, -1, ErrNotFound
}

// Update merges updates over the document with the given id, refreshes
// updatedAt and persists. It returns the merged document, or ErrNotFound
// without mutating anything.
func (db *Database) Update(collection string, id any, updates Document) (Document, error) {
	doc, _, err := db.findIndexByID(collection, id)
	if err != nil {
		return nil, err
	}
	for key, value := range updates {
		doc[key] = value
	}
	doc["updatedAt"] = time.Now()
	db.saveToStorage()
	return doc, nil
}

// Delete removes the document with the given id, preserving the order of the
// remaining documents, and returns it. Ids are never reused afterwards.
func (db *Database) Delete(collection string, id any) (Document, error) {
	doc, index, err := db.findIndexByID(collection, id)
	if err != nil {
		return nil, err
	}
	docs := db.collections[collection]
	db.collections[collection] = append(docs[:index], docs[index+1:]...)
	db.saveToStorage()
	return doc, nil
}

// GetAll returns a copy of the collection's document sequence. The documents
// themselves are shared references and must be treated as read-only.
func (db *Database) GetAll(collection string) []Document {
	docs := db.collections[collection]
	out := make([]Document, len(docs))
	copy(out, docs)
	return out
}

// FindConsultationsByDoctor returns every consultation for a doctor.
func (db *Database) FindConsultationsByDoctor(doctorID int) []Document {
	return db.Find(CollectionConsultations, Document{"doctorId": doctorID})
}

// FindConsultationsByPatient returns every consultation for a patient.
func (db *Database) FindConsultationsByPatient(patientID int) []Document {
	return db.Find(CollectionConsultations, Document{"patientId": patientID})
}

// FindPrescriptionsByConsultation returns the prescriptions linked to a
// consultation.
func (db *Database) FindPrescriptionsByConsultation(consultationID int) []Document {
	return db.Find(CollectionPrescriptions, Document{"consultationId": consultationID})
}

// FindPrescriptionsByDoctor returns every prescription issued by a doctor.
func (db *Database) FindPrescriptionsByDoctor(doctorID int) []Document {
	return db.Find(CollectionPrescriptions, Document{"doctorId": doctorID})
}

// FindPrescriptionsByPatient returns every prescription for a patient.
func (db *Database) FindPrescriptionsByPatient(patientID int) []Document {
	return db.Find(CollectionPrescriptions, Document{"patientId": patientID})
}

// FindPatientsByDoctor resolves the distinct patients across a doctor's
// consultations, silently dropping ids that no longer resolve.
func (db *Database) FindPatientsByDoctor(doctorID int) []Document {
	seen := make(map[int]bool)
	var patients []Document
	for _, c := range db.FindConsultationsByDoctor(doctorID) {
		pid, ok := toInt(c["patientId"])
		if !ok || seen[pid] {
			continue
		}
		seen[pid] = true
		if patient, err := db.FindByID(CollectionPatients, pid); err == nil {
			patients = append(patients, patient)
		}
	}
	return patients
}

// IsEmailUnique reports whether no user other than excludeID (0 to exclude
// nobody) already has this email. Comparison is case-insensitive because
// emails are stored lowercased.
func (db *Database) IsEmailUnique(email string, excludeID int) bool {
	existing, err := db.FindOne(CollectionUsers, Document{"email": strings.ToLower(strings.TrimSpace(email))})
	if err != nil {
		return true
	}
	if id, ok := toInt(existing["id"]); ok && excludeID != 0 && id == excludeID {
		return true
	}
	return false
}

// Stats summarizes collection sizes for the dashboard.
type Stats struct {
	TotalDoctors       int    `json:"totalDoctors"`
	TotalPatients      int    `json:"totalPatients"`
	TotalConsultations int    `json:"totalConsultations"`
	TotalPrescriptions int    `json:"totalPrescriptions"`
	LastSaved          string `json:"lastSaved"`
}

// Stats returns per-collection counts plus the last persist timestamp.
func (db *Database) Stats() Stats {
	return Stats{
		TotalDoctors:       len(db.collections[CollectionDoctors]),
		TotalPatients:      len(db.collections[CollectionPatients]),
		TotalConsultations: len(db.collections[CollectionConsultations]),
		TotalPrescriptions: len(db.collections[CollectionPrescriptions]),
		LastSaved:          db.lastSaved,
	}
}

// StorageInfo describes the persisted slot.
type StorageInfo struct {
	SizeInBytes int    `json:"sizeInBytes"`
	SizeInKB    string `json:"sizeInKB"`
	LastSaved   string `json:"lastSaved"`
	RecordCount int    `json:"recordCount"`
}

// StorageInfo reports the size of the persisted slot and the total number of
// in-memory records.
func (db *Database) StorageInfo() StorageInfo {
	info := StorageInfo{LastSaved: db.lastSaved}
	if raw, ok, err := db.store.GetItem(db.storageKey); err == nil && ok {
		info.SizeInBytes = len(raw)
	}
	info.SizeInKB = fmt.Sprintf("%.2f", float64(info.SizeInBytes)/1024)
	for _, docs := range db.collections {
		info.RecordCount += len(docs)
	}
	return info
}

// Export produces a full backup of the current state.
func (db *Database) Export() Backup {
	return Backup{
		Collections: db.collections,
		Counters:    db.counters,
		ExportedAt:  time.Now().Format(time.RFC3339Nano),
		Version:     backupVersion,
	}
}

// ExportJSON serializes a full backup.
func (db *Database) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(db.Export(), "", "  ")
}

// Import replaces the current state with a backup and persists it.
func (db *Database) Import(backup Backup) {
	db.adoptState(backup.Collections, backup.Counters)
	db.saveToStorage()
}

// ImportJSON restores a backup produced by ExportJSON.
func (db *Database) ImportJSON(data []byte) error {
	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	db.Import(backup)
	return nil
}

// Reset clears the storage slot and reinitializes with seed data.
func (db *Database) Reset() {
	if err := db.store.RemoveItem(db.storageKey); err != nil {
		log.Printf("Error clearing storage slot: %v", err)
	}
	db.collections = defaultCollections()
	db.counters = defaultCounters()
	db.lastSaved = ""
	db.Seed()
}

// matches reports whether every non-nil query field equals the document's
// value for that field. Matching is exact; there is no partial or substring
// matching.
func matches(doc Document, query Document) bool {
	for key, want := range query {
		if want == nil {
			continue
		}
		if !equalValues(doc[key], want) {
			return false
		}
	}
	return true
}

// equalValues compares two document values, tolerating the int/float64 split
// JSON round-trips cause and comparing times by instant. Strings never match
// numbers; coercion of numeric strings is FindByID's job only.
func equalValues(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	an, aok := numericValue(a)
	bn, bok := numericValue(b)
	if aok || bok {
		return aok && bok && an == bn
	}
	return a == b
}

// numericValue normalizes int-like values so 3 matches 3.0 after a reload.
func numericValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

// toInt coerces ints, integral floats and numeric strings to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func docTime(doc Document, field string) time.Time {
	switch v := doc[field].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
