package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	SyncPending SyncStatus = "pending"
	SyncRunning SyncStatus = "syncing"
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
)

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptProcessed ReceiptStatus = "processed"
	ReceiptFailed    ReceiptStatus = "failed"
)

const (
	SourceUpload ReceiptSource = "upload"
	SourceGmail  ReceiptSource = "gmail"
)

const (
	EntryTimesheet     EntryType = "timesheet"
	EntryEquipment     EntryType = "equipment"
	EntrySubcontractor EntryType = "subcontractor"
	EntryOverhead      EntryType = "overhead"
	EntryMaterial      EntryType = "material"
)

const (
	ChangeOrderPending  ChangeOrderStatus = "pending"
	ChangeOrderApproved ChangeOrderStatus = "approved"
	ChangeOrderRejected ChangeOrderStatus = "rejected"
)

type (
	SyncStatus        string
	ReceiptStatus     string
	ReceiptSource     string
	EntryType         string
	ChangeOrderStatus string

	// Date is a plain calendar date. The time component is always midnight UTC
	// and never takes part in comparisons.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Hours is a labor duration in hundredths of an hour (8.5h = 850),
	// so hours times pay rate stays in integer arithmetic.
	Hours struct {
		Hundredths int64
	}

	Project struct {
		ID                   string    `json:"id"`
		Name                 string    `json:"name"`
		TotalBudget          Money     `json:"totalBudget"`
		LaborBudget          Money     `json:"laborBudget"`
		MaterialsBudget      Money     `json:"materialsBudget"`
		EquipmentBudget      Money     `json:"equipmentBudget"`
		SubcontractorsBudget Money     `json:"subcontractorsBudget"`
		OverheadBudget       Money     `json:"overheadBudget"`
		StartDate            Date      `json:"startDate"`
		EndDate              Date      `json:"endDate"`
		Notes                string    `json:"notes,omitempty"`
		CreatedAt            time.Time `json:"createdAt"`
		UpdatedAt            time.Time `json:"updatedAt"`
	}

	Employee struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Role      string    `json:"role,omitempty"`
		PayRate   Money     `json:"payRate"`
		Active    bool      `json:"active"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	Timesheet struct {
		ID         string    `json:"id"`
		ProjectID  string    `json:"projectId"`
		EmployeeID string    `json:"employeeId,omitempty"`
		Date       Date      `json:"date"`
		Hours      Hours     `json:"hours"`
		PayRate    Money     `json:"payRate"`
		CategoryID string    `json:"categoryId,omitempty"`
		Notes      string    `json:"notes,omitempty"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	EquipmentLog struct {
		ID            string    `json:"id"`
		ProjectID     string    `json:"projectId"`
		Date          Date      `json:"date"`
		EquipmentName string    `json:"equipmentName"`
		FuelCost      Money     `json:"fuelCost"`
		RentalCost    Money     `json:"rentalCost"`
		CategoryID    string    `json:"categoryId,omitempty"`
		Notes         string    `json:"notes,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	SubcontractorEntry struct {
		ID          string    `json:"id"`
		ProjectID   string    `json:"projectId"`
		Date        Date      `json:"date"`
		Company     string    `json:"company"`
		Description string    `json:"description,omitempty"`
		Cost        Money     `json:"cost"`
		CategoryID  string    `json:"categoryId,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	OverheadEntry struct {
		ID          string    `json:"id"`
		ProjectID   string    `json:"projectId"`
		Date        Date      `json:"date"`
		Description string    `json:"description"`
		Cost        Money     `json:"cost"`
		CategoryID  string    `json:"categoryId,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	ProgressReport struct {
		ID              string     `json:"id"`
		ProjectID       string     `json:"projectId"`
		Date            Date       `json:"date"`
		PercentComplete int        `json:"percentComplete"`
		Notes           string     `json:"notes,omitempty"`
		Materials       []Material `json:"materials,omitempty"`
		CreatedAt       time.Time  `json:"createdAt"`
		UpdatedAt       time.Time  `json:"updatedAt"`
	}

	Material struct {
		ID         string    `json:"id"`
		ReportID   string    `json:"reportId"`
		ProjectID  string    `json:"projectId"`
		Name       string    `json:"name"`
		Quantity   float64   `json:"quantity,omitempty"`
		Unit       string    `json:"unit,omitempty"`
		Cost       Money     `json:"cost"`
		CategoryID string    `json:"categoryId,omitempty"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	Category struct {
		ID        string    `json:"id"`
		ProjectID string    `json:"projectId"`
		Name      string    `json:"name"`
		Color     string    `json:"color,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	ChangeOrder struct {
		ID          string            `json:"id"`
		ProjectID   string            `json:"projectId"`
		Date        Date              `json:"date"`
		Description string            `json:"description"`
		Amount      Money             `json:"amount"`
		Status      ChangeOrderStatus `json:"status"`
		CreatedAt   time.Time         `json:"createdAt"`
		UpdatedAt   time.Time         `json:"updatedAt"`
	}

	Receipt struct {
		ID           string             `json:"id"`
		ProjectID    string             `json:"projectId"`
		Vendor       string             `json:"vendor,omitempty"`
		ReceiptDate  Date               `json:"receiptDate"`
		Subtotal     Money              `json:"subtotal"`
		Tax          Money              `json:"tax"`
		Total        Money              `json:"total"`
		Status       ReceiptStatus      `json:"status"`
		ErrorMessage string             `json:"errorMessage,omitempty"`
		Source       ReceiptSource      `json:"source"`
		FilePath     string             `json:"filePath,omitempty"`
		Extraction   *ReceiptExtraction `json:"extraction,omitempty"`
		CreatedAt    time.Time          `json:"createdAt"`
		UpdatedAt    time.Time          `json:"updatedAt"`
	}

	ReceiptLink struct {
		ID        string    `json:"id"`
		ReceiptID string    `json:"receiptId"`
		EntryType EntryType `json:"entryType"`
		EntryID   string    `json:"entryId"`
		CreatedAt time.Time `json:"createdAt"`
	}

	GmailConnection struct {
		ID         string     `json:"id"`
		GmailEmail string     `json:"gmailEmail"`
		IsActive   bool       `json:"isActive"`
		SyncStatus SyncStatus `json:"syncStatus"`
		LastSyncAt time.Time  `json:"lastSyncAt"`
		LastError  string     `json:"lastError,omitempty"`
		CreatedAt  time.Time  `json:"createdAt"`
		UpdatedAt  time.Time  `json:"updatedAt"`
	}

	// ReceiptExtraction is the structured result of document analysis.
	// Every field is best-effort; a zero value means the analyzer could not
	// read it from the image.
	ReceiptExtraction struct {
		Vendor    string            `json:"vendor,omitempty"`
		Date      string            `json:"date,omitempty"`
		LineItems []ReceiptLineItem `json:"lineItems,omitempty"`
		Subtotal  Money             `json:"subtotal"`
		Tax       Money             `json:"tax"`
		Total     Money             `json:"total"`
	}

	ReceiptLineItem struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity,omitempty"`
		Unit        string  `json:"unit,omitempty"`
		Price       Money   `json:"price"`
		Total       Money   `json:"total"`
	}

	// ScanReport summarizes one inbox scan. Per-attachment failures are
	// collected in Errors and never abort the scan.
	ScanReport struct {
		EmailsScanned     int      `json:"emailsScanned"`
		ReceiptsFound     int      `json:"receiptsFound"`
		ReceiptsProcessed int      `json:"receiptsProcessed"`
		ReceiptsFailed    int      `json:"receiptsFailed"`
		Errors            []string `json:"errors,omitempty"`
	}
)

var (
	ErrNotFound       = errors.New("not found")
	ErrConnectionBusy = errors.New("gmail connection busy")
	ErrUpstream       = errors.New("upstream service error")
	ErrDuplicateLink  = errors.New("receipt already linked to this entry")

	// ErrValidation is the umbrella for every rejected field. The HTTP layer
	// matches on it; callers that care about the specific field match the
	// wrapped sentinels below.
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidHours     = fmt.Errorf("%w: invalid hours", ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidBudget    = fmt.Errorf("%w: total budget must be positive", ErrValidation)
	ErrInvalidPercent   = fmt.Errorf("%w: percent complete must be between 0 and 100", ErrValidation)
	ErrInvalidEntryType = fmt.Errorf("%w: invalid entry type", ErrValidation)
	ErrEmptyFile        = fmt.Errorf("%w: empty receipt file", ErrValidation)
	ErrEmptyName        = fmt.Errorf("%w: empty name", ErrValidation)
	ErrEmptyProjectID   = fmt.Errorf("%w: empty project id", ErrValidation)
	ErrEmptyEmail       = fmt.Errorf("%w: empty gmail address", ErrValidation)
)

// ParseDate parses a plain YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current server-local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	y1, m1, day1 := d.Date()
	y2, m2, day2 := other.Date()
	return y1 == y2 && m1 == m2 && day1 == day2
}

// DaysUntil returns the number of whole days from d to other, rounded up.
func (d Date) DaysUntil(other Date) int {
	start := time.Date(d.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(other.Year(), other.Time.Month(), other.Time.Day(), 0, 0, 0, 0, time.UTC)
	diff := end.Sub(start)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts; the result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (h Hours) Validate() error {
	if h.Hundredths <= 0 {
		return ErrInvalidHours
	}
	return nil
}

// Float returns the hour count as a float64 for display purposes.
func (h Hours) Float() float64 {
	return float64(h.Hundredths) / 100.0
}

func (h Hours) MarshalJSON() ([]byte, error) {
	return formatScaledJSON(h.Hundredths), nil
}

func (h *Hours) UnmarshalJSON(data []byte) error {
	v, err := parseScaledJSON(data)
	if err != nil {
		return ErrInvalidHours
	}
	h.Hundredths = v
	return nil
}

// Valid reports whether t is in the closed set of linkable entry kinds.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTimesheet, EntryEquipment, EntrySubcontractor, EntryOverhead, EntryMaterial:
		return true
	}
	return false
}

// EntryTypes returns the linkable entry kinds in a stable order.
func EntryTypes() []EntryType {
	return []EntryType{EntryTimesheet, EntryEquipment, EntrySubcontractor, EntryOverhead, EntryMaterial}
}

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncPending, SyncRunning, SyncSuccess, SyncError:
		return true
	}
	return false
}

func (s ChangeOrderStatus) Valid() bool {
	switch s {
	case ChangeOrderPending, ChangeOrderApproved, ChangeOrderRejected:
		return true
	}
	return false
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return fmt.Errorf("%w: name too long (max 200 characters)", ErrValidation)
	}
	if p.TotalBudget.Cents <= 0 {
		return ErrInvalidBudget
	}
	for _, b := range []Money{p.LaborBudget, p.MaterialsBudget, p.EquipmentBudget, p.SubcontractorsBudget, p.OverheadBudget} {
		if b.Cents < 0 {
			return ErrInvalidAmount
		}
	}
	if err := p.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", ErrInvalidDate)
	}
	if !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate.Time) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	return nil
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.PayRate.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Timesheet) Validate() error {
	if strings.TrimSpace(t.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Hours.Validate(); err != nil {
		return err
	}
	if err := t.PayRate.Validate(); err != nil {
		return err
	}
	return nil
}

func (e EquipmentLog) Validate() error {
	if strings.TrimSpace(e.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.EquipmentName) == "" {
		return ErrEmptyName
	}
	if e.FuelCost.Cents < 0 || e.RentalCost.Cents < 0 {
		return ErrInvalidAmount
	}
	if e.FuelCost.Cents+e.RentalCost.Cents == 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s SubcontractorEntry) Validate() error {
	if strings.TrimSpace(s.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.Company) == "" {
		return ErrEmptyName
	}
	return s.Cost.Validate()
}

func (o OverheadEntry) Validate() error {
	if strings.TrimSpace(o.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	if err := o.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(o.Description) == "" {
		return ErrEmptyName
	}
	return o.Cost.Validate()
}

func (r ProgressReport) Validate() error {
	if strings.TrimSpace(r.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if r.PercentComplete < 0 || r.PercentComplete > 100 {
		return ErrInvalidPercent
	}
	for _, m := range r.Materials {
		if err := m.validateFields(); err != nil {
			return fmt.Errorf("material %q: %w", m.Name, err)
		}
	}
	return nil
}

func (m Material) Validate() error {
	if strings.TrimSpace(m.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	return m.validateFields()
}

func (m Material) validateFields() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if m.Quantity < 0 {
		return fmt.Errorf("%w: negative quantity", ErrValidation)
	}
	return m.Cost.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("%w: name too long (max 100 characters)", ErrValidation)
	}
	return nil
}

func (c ChangeOrder) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyName
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if !c.Status.Valid() {
		return fmt.Errorf("%w: invalid change order status", ErrValidation)
	}
	return nil
}

func (r Receipt) Validate() error {
	if strings.TrimSpace(r.ProjectID) == "" {
		return ErrEmptyProjectID
	}
	switch r.Status {
	case ReceiptPending, ReceiptProcessed, ReceiptFailed:
	default:
		return fmt.Errorf("%w: invalid receipt status", ErrValidation)
	}
	switch r.Source {
	case SourceUpload, SourceGmail:
	default:
		return fmt.Errorf("%w: invalid receipt source", ErrValidation)
	}
	return nil
}

func (l ReceiptLink) Validate() error {
	if strings.TrimSpace(l.ReceiptID) == "" {
		return fmt.Errorf("%w: empty receipt id", ErrValidation)
	}
	if !l.EntryType.Valid() {
		return ErrInvalidEntryType
	}
	if strings.TrimSpace(l.EntryID) == "" {
		return fmt.Errorf("%w: empty entry id", ErrValidation)
	}
	return nil
}

func (g GmailConnection) Validate() error {
	if strings.TrimSpace(g.GmailEmail) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(g.GmailEmail, "@") {
		return fmt.Errorf("%w: malformed gmail address", ErrValidation)
	}
	if !g.SyncStatus.Valid() {
		return fmt.Errorf("%w: invalid sync status", ErrValidation)
	}
	return nil
}
