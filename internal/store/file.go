package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/model"
	"github.com/salemate/franchise-performance/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Date is a record date written either as "2006-01-02" or as RFC 3339.
type Date struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{constants.DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("line %d: invalid date %q", value.Line, raw)
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// RoleSet is a list of managerial roles written either as a YAML sequence or
// as a JSON-encoded string.
type RoleSet []model.Role

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *RoleSet) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var tags []string
		if err := value.Decode(&tags); err != nil {
			return err
		}
		roles, err := parseRoleTags(tags)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*r = roles
	case yaml.ScalarNode:
		roles, err := ParseRoles(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*r = roles
	default:
		return fmt.Errorf("line %d: managerial roles must be a list or a JSON string", value.Line)
	}
	return nil
}

// ProjectRef is a project reference written as `{name: ...}` or as a string
// that may embed a JSON or pseudo-JSON name. It is resolved once, on decode.
type ProjectRef struct {
	Name string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *ProjectRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var named struct {
			Name string `yaml:"name"`
		}
		if err := value.Decode(&named); err != nil {
			return err
		}
		p.Name = strings.TrimSpace(named.Name)
	case yaml.ScalarNode:
		p.Name = ProjectName(value.Value)
	default:
		return fmt.Errorf("line %d: project must be a name or an object with a name", value.Line)
	}
	return nil
}

type fileFranchise struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Slug      string `yaml:"slug"`
	Headcount int    `yaml:"headcount"`
	IsActive  *bool  `yaml:"isActive"`
}

type fileTransaction struct {
	ID                 string     `yaml:"id"`
	Franchise          string     `yaml:"franchise"`
	ProjectID          int64      `yaml:"projectId"`
	Project            ProjectRef `yaml:"project"`
	Amount             float64    `yaml:"amount"`
	Stage              string     `yaml:"stage"`
	StageUpdatedAt     Date       `yaml:"stageUpdatedAt"`
	ContractedAt       *Date      `yaml:"contractedAt"`
	ExpectedPayoutDate *Date      `yaml:"expectedPayoutDate"`
	CommissionAmount   *float64   `yaml:"commissionAmount"`
	GrossCommission    *float64   `yaml:"grossCommission"`
	TaxAmount          *float64   `yaml:"taxAmount"`
	WithholdingTax     *float64   `yaml:"withholdingTax"`
	IncomeTax          *float64   `yaml:"incomeTax"`
	NetCommission      *float64   `yaml:"netCommission"`
	ManagerialRoles    RoleSet    `yaml:"managerialRoles"`
	Notes              string     `yaml:"notes"`
}

type fileExpense struct {
	ID          string  `yaml:"id"`
	Franchise   string  `yaml:"franchise"`
	Type        string  `yaml:"type"`
	Category    string  `yaml:"category"`
	Description string  `yaml:"description"`
	Amount      float64 `yaml:"amount"`
	Date        Date    `yaml:"date"`
}

type fileCut struct {
	Franchise     string  `yaml:"franchise"`
	Role          string  `yaml:"role"`
	CutPerMillion float64 `yaml:"cutPerMillion"`
}

// dataset is the on-disk layout. A record set whose key is absent decodes to
// nil and is reported as missing when a franchise is loaded.
type dataset struct {
	Franchises     []fileFranchise   `yaml:"franchises"`
	Transactions   []fileTransaction `yaml:"transactions"`
	Expenses       []fileExpense     `yaml:"expenses"`
	CommissionCuts []fileCut         `yaml:"commissionCuts"`
}

// FileSource serves records decoded from a YAML dataset.
type FileSource struct {
	logger       *zap.Logger
	franchises   []model.Franchise
	transactions map[string][]model.Transaction
	expenses     map[string][]model.Expense
	cuts         map[string][]model.CommissionCut

	hasTransactions bool
	hasExpenses     bool
	hasCuts         bool
}

// OpenFile reads a YAML dataset from path.
func OpenFile(path string, logger *zap.Logger) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	src, err := NewFileSource(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// NewFileSource decodes a YAML dataset and normalises its records: missing
// IDs are generated, missing slugs are derived from names and every record is
// attached to its franchise by ID or slug.
func NewFileSource(r io.Reader, logger *zap.Logger) (*FileSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var ds dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	src := &FileSource{
		logger:          logger,
		transactions:    make(map[string][]model.Transaction),
		expenses:        make(map[string][]model.Expense),
		cuts:            make(map[string][]model.CommissionCut),
		hasTransactions: ds.Transactions != nil,
		hasExpenses:     ds.Expenses != nil,
		hasCuts:         ds.CommissionCuts != nil,
	}

	seen := make(map[string]bool)
	for _, ff := range ds.Franchises {
		f := model.Franchise{
			ID:        strings.TrimSpace(ff.ID),
			Name:      strings.TrimSpace(ff.Name),
			Slug:      strings.TrimSpace(ff.Slug),
			Headcount: ff.Headcount,
			IsActive:  ff.IsActive == nil || *ff.IsActive,
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.Slug == "" && f.Name != "" {
			f.Slug = slug.Make(f.Name)
		}
		if seen[f.ID] || (f.Slug != "" && seen[f.Slug]) {
			return nil, fmt.Errorf("duplicate franchise %q", f.Name)
		}
		seen[f.ID] = true
		if f.Slug != "" {
			seen[f.Slug] = true
		}
		src.franchises = append(src.franchises, f)
	}

	for i, ft := range ds.Transactions {
		owner, err := src.resolve(ft.Franchise)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		stage := model.Stage(strings.ToLower(strings.TrimSpace(ft.Stage)))
		if !stage.Valid() {
			return nil, fmt.Errorf("transaction %d: unknown stage %q", i, ft.Stage)
		}
		tx := model.Transaction{
			ID:                 ft.ID,
			FranchiseID:        owner.ID,
			ProjectID:          ft.ProjectID,
			ProjectName:        ft.Project.Name,
			TransactionAmount:  ft.Amount,
			Stage:              stage,
			StageUpdatedAt:     ft.StageUpdatedAt.Time,
			ContractedAt:       ft.ContractedAt.ptr(),
			ExpectedPayoutDate: ft.ExpectedPayoutDate.ptr(),
			CommissionAmount:   ft.CommissionAmount,
			GrossCommission:    ft.GrossCommission,
			TaxAmount:          ft.TaxAmount,
			WithholdingTax:     ft.WithholdingTax,
			IncomeTax:          ft.IncomeTax,
			NetCommission:      ft.NetCommission,
			ManagerialRoles:    ft.ManagerialRoles,
			Notes:              ft.Notes,
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.ProjectName == "" {
			tx.ProjectName = fallbackProjectName(tx.ProjectID)
		}
		src.transactions[owner.ID] = append(src.transactions[owner.ID], tx)
	}

	for i, fe := range ds.Expenses {
		owner, err := src.resolve(fe.Franchise)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", i, err)
		}
		expenseType := model.ExpenseType(strings.ToLower(strings.TrimSpace(fe.Type)))
		if expenseType != model.ExpenseFixed && expenseType != model.ExpenseVariable {
			return nil, fmt.Errorf("expense %d: unknown expense type %q", i, fe.Type)
		}
		category := model.ExpenseCategory(strings.ToLower(strings.TrimSpace(fe.Category)))
		if category == "" {
			category = model.CategoryOther
		}
		e := model.Expense{
			ID:          fe.ID,
			FranchiseID: owner.ID,
			Type:        expenseType,
			Category:    category,
			Description: fe.Description,
			Amount:      fe.Amount,
			Date:        fe.Date.Time,
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		src.expenses[owner.ID] = append(src.expenses[owner.ID], e)
	}

	for i, fc := range ds.CommissionCuts {
		owner, err := src.resolve(fc.Franchise)
		if err != nil {
			return nil, fmt.Errorf("commission cut %d: %w", i, err)
		}
		role, err := model.ParseRole(strings.TrimSpace(fc.Role))
		if err != nil {
			return nil, fmt.Errorf("commission cut %d: %w", i, err)
		}
		src.cuts[owner.ID] = append(src.cuts[owner.ID], model.CommissionCut{
			FranchiseID:   owner.ID,
			Role:          role,
			CutPerMillion: fc.CutPerMillion,
		})
	}

	logger.Debug("Loaded dataset",
		zap.String("op", "store.NewFileSource"),
		zap.Int("franchises", len(src.franchises)),
		zap.Int("transactions", len(ds.Transactions)),
		zap.Int("expenses", len(ds.Expenses)),
		zap.Int("commissionCuts", len(ds.CommissionCuts)))

	return src, nil
}

func (s *FileSource) resolve(key string) (model.Franchise, error) {
	key = strings.TrimSpace(key)
	for _, f := range s.franchises {
		if matches(f, key) {
			return f, nil
		}
	}
	return model.Franchise{}, fmt.Errorf("%w: %q", ErrFranchiseNotFound, key)
}

// Franchises implements Source.
func (s *FileSource) Franchises(ctx context.Context) ([]model.Franchise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Franchise, len(s.franchises))
	copy(out, s.franchises)
	return out, nil
}

// Load implements Source. Record sets absent from the dataset are returned as
// nil so that the aggregator reports them as missing.
func (s *FileSource) Load(ctx context.Context, franchiseID string) (analytics.Input, error) {
	if err := ctx.Err(); err != nil {
		return analytics.Input{}, err
	}
	f, err := s.resolve(franchiseID)
	if err != nil {
		return analytics.Input{}, err
	}

	in := analytics.Input{Franchise: &f}
	if s.hasTransactions {
		in.Transactions = append([]model.Transaction{}, s.transactions[f.ID]...)
	}
	if s.hasExpenses {
		in.Expenses = append([]model.Expense{}, s.expenses[f.ID]...)
	}
	if s.hasCuts {
		in.CommissionCuts = append([]model.CommissionCut{}, s.cuts[f.ID]...)
	}
	return in, nil
}
