package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"cantiere/internal/core"
	"cantiere/internal/mail"
)

// fakeStore is an in-memory stand-in for the SQLite repository. Single
// injectable errors cover the failure paths the services care about.
type fakeStore struct {
	mu sync.Mutex

	projects    map[string]core.Project
	employees   map[string]core.Employee
	timesheets  map[string]core.Timesheet
	equipment   map[string]core.EquipmentLog
	subs        map[string]core.SubcontractorEntry
	overhead    map[string]core.OverheadEntry
	reports     map[string]core.ProgressReport
	materials   map[string]core.Material
	categories  map[string]core.Category
	orders      map[string]core.ChangeOrder
	receipts    map[string]core.Receipt
	links       map[string]core.ReceiptLink
	connections map[string]core.GmailConnection

	listTimesheetsErr error
	createActiveErr   error
	syncStarted       int
	syncResults       []core.SyncStatus
}

var (
	_ ProjectStore    = (*fakeStore)(nil)
	_ EntryStore      = (*fakeStore)(nil)
	_ TaxonomyStore   = (*fakeStore)(nil)
	_ StatsStore      = (*fakeStore)(nil)
	_ ReceiptStore    = (*fakeStore)(nil)
	_ ConnectionStore = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:    map[string]core.Project{},
		employees:   map[string]core.Employee{},
		timesheets:  map[string]core.Timesheet{},
		equipment:   map[string]core.EquipmentLog{},
		subs:        map[string]core.SubcontractorEntry{},
		overhead:    map[string]core.OverheadEntry{},
		reports:     map[string]core.ProgressReport{},
		materials:   map[string]core.Material{},
		categories:  map[string]core.Category{},
		orders:      map[string]core.ChangeOrder{},
		receipts:    map[string]core.Receipt{},
		links:       map[string]core.ReceiptLink{},
		connections: map[string]core.GmailConnection{},
	}
}

func (f *fakeStore) CreateProject(ctx context.Context, p core.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[p.ID] = p
	return nil
}

func (f *fakeStore) GetProject(ctx context.Context, id string) (core.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return core.Project{}, core.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListProjects(ctx context.Context) ([]core.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateProject(ctx context.Context, p core.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[p.ID]; !ok {
		return core.ErrNotFound
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeStore) DeleteProject(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeStore) CreateEmployee(ctx context.Context, e core.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees[e.ID] = e
	return nil
}

func (f *fakeStore) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.employees[id]
	if !ok {
		return core.Employee{}, core.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Employee, 0, len(f.employees))
	for _, e := range f.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateEmployee(ctx context.Context, e core.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.employees[e.ID]; !ok {
		return core.ErrNotFound
	}
	f.employees[e.ID] = e
	return nil
}

func (f *fakeStore) DeleteEmployee(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.employees[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.employees, id)
	return nil
}

func (f *fakeStore) CreateTimesheet(ctx context.Context, t core.Timesheet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timesheets[t.ID] = t
	return nil
}

func (f *fakeStore) GetTimesheet(ctx context.Context, id string) (core.Timesheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.timesheets[id]
	if !ok {
		return core.Timesheet{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListTimesheets(ctx context.Context, projectID string) ([]core.Timesheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listTimesheetsErr != nil {
		return nil, f.listTimesheetsErr
	}
	var out []core.Timesheet
	for _, t := range f.timesheets {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateTimesheet(ctx context.Context, t core.Timesheet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.timesheets[t.ID]; !ok {
		return core.ErrNotFound
	}
	f.timesheets[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTimesheet(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.timesheets[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.timesheets, id)
	return nil
}

func (f *fakeStore) CreateEquipmentLog(ctx context.Context, e core.EquipmentLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.equipment[e.ID] = e
	return nil
}

func (f *fakeStore) GetEquipmentLog(ctx context.Context, id string) (core.EquipmentLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.equipment[id]
	if !ok {
		return core.EquipmentLog{}, core.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListEquipmentLogs(ctx context.Context, projectID string) ([]core.EquipmentLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.EquipmentLog
	for _, e := range f.equipment {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateEquipmentLog(ctx context.Context, e core.EquipmentLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.equipment[e.ID]; !ok {
		return core.ErrNotFound
	}
	f.equipment[e.ID] = e
	return nil
}

func (f *fakeStore) DeleteEquipmentLog(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.equipment[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.equipment, id)
	return nil
}

func (f *fakeStore) CreateSubcontractorEntry(ctx context.Context, s core.SubcontractorEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[s.ID] = s
	return nil
}

func (f *fakeStore) GetSubcontractorEntry(ctx context.Context, id string) (core.SubcontractorEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[id]
	if !ok {
		return core.SubcontractorEntry{}, core.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) ListSubcontractorEntries(ctx context.Context, projectID string) ([]core.SubcontractorEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.SubcontractorEntry
	for _, s := range f.subs {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateSubcontractorEntry(ctx context.Context, s core.SubcontractorEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[s.ID]; !ok {
		return core.ErrNotFound
	}
	f.subs[s.ID] = s
	return nil
}

func (f *fakeStore) DeleteSubcontractorEntry(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.subs, id)
	return nil
}

func (f *fakeStore) CreateOverheadEntry(ctx context.Context, o core.OverheadEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overhead[o.ID] = o
	return nil
}

func (f *fakeStore) GetOverheadEntry(ctx context.Context, id string) (core.OverheadEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.overhead[id]
	if !ok {
		return core.OverheadEntry{}, core.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) ListOverheadEntries(ctx context.Context, projectID string) ([]core.OverheadEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.OverheadEntry
	for _, o := range f.overhead {
		if o.ProjectID == projectID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateOverheadEntry(ctx context.Context, o core.OverheadEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.overhead[o.ID]; !ok {
		return core.ErrNotFound
	}
	f.overhead[o.ID] = o
	return nil
}

func (f *fakeStore) DeleteOverheadEntry(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.overhead[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.overhead, id)
	return nil
}

func (f *fakeStore) CreateProgressReport(ctx context.Context, r core.ProgressReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[r.ID] = r
	for _, m := range r.Materials {
		f.materials[m.ID] = m
	}
	return nil
}

func (f *fakeStore) GetProgressReport(ctx context.Context, id string) (core.ProgressReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return core.ProgressReport{}, core.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListProgressReports(ctx context.Context, projectID string) ([]core.ProgressReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.ProgressReport
	for _, r := range f.reports {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateProgressReport(ctx context.Context, r core.ProgressReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.reports[r.ID]
	if !ok {
		return core.ErrNotFound
	}
	r.Materials = existing.Materials
	f.reports[r.ID] = r
	return nil
}

func (f *fakeStore) DeleteProgressReport(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return core.ErrNotFound
	}
	for _, m := range r.Materials {
		delete(f.materials, m.ID)
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeStore) ListMaterials(ctx context.Context, projectID string) ([]core.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Material
	for _, m := range f.materials {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, c core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories[c.ID] = c
	return nil
}

func (f *fakeStore) GetCategory(ctx context.Context, id string) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListCategories(ctx context.Context, projectID string) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Category
	for _, c := range f.categories {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, c core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[c.ID]; !ok {
		return core.ErrNotFound
	}
	f.categories[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteCategory(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.categories, id)
	for tid, t := range f.timesheets {
		if t.CategoryID == id {
			t.CategoryID = ""
			f.timesheets[tid] = t
		}
	}
	for eid, e := range f.equipment {
		if e.CategoryID == id {
			e.CategoryID = ""
			f.equipment[eid] = e
		}
	}
	for sid, s := range f.subs {
		if s.CategoryID == id {
			s.CategoryID = ""
			f.subs[sid] = s
		}
	}
	for oid, o := range f.overhead {
		if o.CategoryID == id {
			o.CategoryID = ""
			f.overhead[oid] = o
		}
	}
	for mid, m := range f.materials {
		if m.CategoryID == id {
			m.CategoryID = ""
			f.materials[mid] = m
		}
	}
	return nil
}

func (f *fakeStore) CreateChangeOrder(ctx context.Context, c core.ChangeOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[c.ID] = c
	return nil
}

func (f *fakeStore) GetChangeOrder(ctx context.Context, id string) (core.ChangeOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.orders[id]
	if !ok {
		return core.ChangeOrder{}, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListChangeOrders(ctx context.Context, projectID string) ([]core.ChangeOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.ChangeOrder
	for _, c := range f.orders {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateChangeOrder(ctx context.Context, c core.ChangeOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[c.ID]; !ok {
		return core.ErrNotFound
	}
	f.orders[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteChangeOrder(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeStore) CreateReceipt(ctx context.Context, r core.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts[r.ID] = r
	return nil
}

func (f *fakeStore) GetReceipt(ctx context.Context, id string) (core.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.receipts[id]
	if !ok {
		return core.Receipt{}, core.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListReceipts(ctx context.Context, projectID string) ([]core.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Receipt
	for _, r := range f.receipts {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateReceipt(ctx context.Context, r core.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.receipts[r.ID]; !ok {
		return core.ErrNotFound
	}
	f.receipts[r.ID] = r
	return nil
}

func (f *fakeStore) DeleteReceipt(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.receipts[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.receipts, id)
	return nil
}

func (f *fakeStore) CreateReceiptLink(ctx context.Context, l core.ReceiptLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.links {
		if existing.ReceiptID == l.ReceiptID && existing.EntryType == l.EntryType && existing.EntryID == l.EntryID {
			return core.ErrDuplicateLink
		}
	}
	f.links[l.ID] = l
	return nil
}

func (f *fakeStore) ListReceiptLinks(ctx context.Context, receiptID string) ([]core.ReceiptLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.ReceiptLink
	for _, l := range f.links {
		if l.ReceiptID == receiptID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteReceiptLink(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.links, id)
	return nil
}

func (f *fakeStore) EntryExists(ctx context.Context, entryType core.EntryType, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch entryType {
	case core.EntryTimesheet:
		_, ok := f.timesheets[id]
		return ok, nil
	case core.EntryEquipment:
		_, ok := f.equipment[id]
		return ok, nil
	case core.EntrySubcontractor:
		_, ok := f.subs[id]
		return ok, nil
	case core.EntryOverhead:
		_, ok := f.overhead[id]
		return ok, nil
	case core.EntryMaterial:
		_, ok := f.materials[id]
		return ok, nil
	default:
		return false, core.ErrInvalidEntryType
	}
}

func (f *fakeStore) CreateActiveConnection(ctx context.Context, g core.GmailConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createActiveErr != nil {
		return f.createActiveErr
	}
	for id, c := range f.connections {
		if c.IsActive {
			c.IsActive = false
			f.connections[id] = c
		}
	}
	f.connections[g.ID] = g
	return nil
}

func (f *fakeStore) GetActiveConnection(ctx context.Context) (core.GmailConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.connections {
		if c.IsActive {
			return c, nil
		}
	}
	return core.GmailConnection{}, core.ErrNotFound
}

func (f *fakeStore) GetConnection(ctx context.Context, id string) (core.GmailConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.connections[id]
	if !ok {
		return core.GmailConnection{}, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ListConnections(ctx context.Context) ([]core.GmailConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.GmailConnection, 0, len(f.connections))
	for _, c := range f.connections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateConnection(ctx context.Context, g core.GmailConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.connections[g.ID]; !ok {
		return core.ErrNotFound
	}
	f.connections[g.ID] = g
	return nil
}

func (f *fakeStore) DeactivateConnection(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.connections[id]
	if !ok || !c.IsActive {
		return core.ErrNotFound
	}
	c.IsActive = false
	c.UpdatedAt = now
	f.connections[id] = c
	return nil
}

func (f *fakeStore) MarkSyncStarted(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.connections[id]
	if !ok {
		return core.ErrNotFound
	}
	c.SyncStatus = core.SyncRunning
	c.UpdatedAt = now
	f.connections[id] = c
	f.syncStarted++
	return nil
}

func (f *fakeStore) MarkSyncResult(ctx context.Context, id string, status core.SyncStatus, lastError string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.connections[id]
	if !ok {
		return core.ErrNotFound
	}
	c.SyncStatus = status
	c.LastError = lastError
	if status == core.SyncSuccess {
		c.LastSyncAt = now
	}
	c.UpdatedAt = now
	f.connections[id] = c
	f.syncResults = append(f.syncResults, status)
	return nil
}

func (f *fakeStore) ResetStuckSyncs(ctx context.Context, lastError string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, c := range f.connections {
		if c.SyncStatus == core.SyncRunning {
			c.SyncStatus = core.SyncError
			c.LastError = lastError
			c.UpdatedAt = now
			f.connections[id] = c
			n++
		}
	}
	return n, nil
}

// fakeAnalyzer returns a canned extraction or error.
type fakeAnalyzer struct {
	extraction core.ReceiptExtraction
	err        error
	calls      int
}

func (f *fakeAnalyzer) AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (core.ReceiptExtraction, error) {
	f.calls++
	if f.err != nil {
		return core.ReceiptExtraction{}, f.err
	}
	return f.extraction, nil
}

// fakeInbox serves a fixed set of messages.
type fakeInbox struct {
	messages []mail.Message
	err      error
}

func (f *fakeInbox) Profile(ctx context.Context) (string, error) {
	return "site@example.com", f.err
}

func (f *fakeInbox) SearchReceipts(ctx context.Context, since time.Time, max int64) ([]mail.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if max > 0 && int64(len(f.messages)) > max {
		return f.messages[:max], nil
	}
	return f.messages, nil
}
