package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/salemate/franchise-performance/internal/analytics"
	"github.com/salemate/franchise-performance/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// FranchiseRow is the GORM model of performance_franchises.
type FranchiseRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Slug      string `gorm:"index"`
	Headcount int    `gorm:"not null;default:0"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for the model
func (FranchiseRow) TableName() string {
	return "performance_franchises"
}

// TransactionRow is the GORM model of performance_transactions.
type TransactionRow struct {
	ID                 string    `gorm:"primaryKey"`
	FranchiseID        string    `gorm:"index;not null"`
	ProjectID          int64     `gorm:"column:project_id"`
	ProjectName        string    `gorm:"column:project_name"`
	TransactionAmount  float64   `gorm:"not null"`
	Stage              string    `gorm:"not null"`
	StageUpdatedAt     time.Time `gorm:"not null"`
	ContractedAt       *time.Time
	ExpectedPayoutDate *time.Time
	CommissionAmount   *float64
	GrossCommission    *float64
	TaxAmount          *float64
	WithholdingTax     *float64
	IncomeTax          *float64
	NetCommission      *float64
	ManagerialRoles    string `gorm:"type:text"`
	Notes              string `gorm:"type:text"`
}

// TableName returns the table name for the model
func (TransactionRow) TableName() string {
	return "performance_transactions"
}

// ExpenseRow is the GORM model of performance_expenses.
type ExpenseRow struct {
	ID          string    `gorm:"primaryKey"`
	FranchiseID string    `gorm:"index;not null"`
	ExpenseType string    `gorm:"not null"`
	Category    string    `gorm:"not null"`
	Description string    `gorm:"type:text"`
	Amount      float64   `gorm:"not null"`
	Date        time.Time `gorm:"not null"`
}

// TableName returns the table name for the model
func (ExpenseRow) TableName() string {
	return "performance_expenses"
}

// CommissionCutRow is the GORM model of performance_commission_cuts.
type CommissionCutRow struct {
	ID            uint    `gorm:"primaryKey"`
	FranchiseID   string  `gorm:"index;not null"`
	Role          string  `gorm:"not null"`
	CutPerMillion float64 `gorm:"not null"`
	UpdatedAt     time.Time
}

// TableName returns the table name for the model
func (CommissionCutRow) TableName() string {
	return "performance_commission_cuts"
}

// Dialect returns the GORM dialector for a DSN. DSNs prefixed with
// "postgres://" or "postgresql://" use PostgreSQL, "sqlite://" and bare file
// paths use SQLite.
func Dialect(dsn string) (gorm.Dialector, error) {
	switch {
	case dsn == "":
		return nil, errors.New("empty database DSN")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	case strings.Contains(dsn, "://"):
		return nil, fmt.Errorf("unsupported database DSN scheme in %q", dsn)
	default:
		return sqlite.Open(dsn), nil
	}
}

// GormSource reads franchise records from the performance_* tables.
type GormSource struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenDatabase connects to the database named by dsn.
func OpenDatabase(dsn string, logger *zap.Logger) (*GormSource, error) {
	dialector, err := Dialect(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return NewGormSource(db, logger), nil
}

// NewGormSource wraps an open connection.
func NewGormSource(db *gorm.DB, logger *zap.Logger) *GormSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormSource{db: db, logger: logger}
}

// Migrate creates the performance_* tables. It is used by tests and local
// SQLite setups; production schemas are managed separately.
func (s *GormSource) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&FranchiseRow{}, &TransactionRow{}, &ExpenseRow{}, &CommissionCutRow{})
}

// Franchises implements Source.
func (s *GormSource) Franchises(ctx context.Context) ([]model.Franchise, error) {
	var rows []FranchiseRow
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list franchises: %w", err)
	}
	out := make([]model.Franchise, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// Load implements Source.
func (s *GormSource) Load(ctx context.Context, franchiseID string) (analytics.Input, error) {
	db := s.db.WithContext(ctx)

	var row FranchiseRow
	err := db.Where("id = ? OR slug = ?", franchiseID, franchiseID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return analytics.Input{}, fmt.Errorf("%w: %q", ErrFranchiseNotFound, franchiseID)
	}
	if err != nil {
		return analytics.Input{}, fmt.Errorf("load franchise: %w", err)
	}
	f := row.toModel()

	var txRows []TransactionRow
	if err := db.Where("franchise_id = ?", f.ID).Order("stage_updated_at").Find(&txRows).Error; err != nil {
		return analytics.Input{}, fmt.Errorf("load transactions: %w", err)
	}
	var expenseRows []ExpenseRow
	if err := db.Where("franchise_id = ?", f.ID).Order("date").Find(&expenseRows).Error; err != nil {
		return analytics.Input{}, fmt.Errorf("load expenses: %w", err)
	}
	var cutRows []CommissionCutRow
	if err := db.Where("franchise_id = ?", f.ID).Order("updated_at, id").Find(&cutRows).Error; err != nil {
		return analytics.Input{}, fmt.Errorf("load commission cuts: %w", err)
	}

	in := analytics.Input{
		Franchise:      &f,
		Transactions:   make([]model.Transaction, 0, len(txRows)),
		Expenses:       make([]model.Expense, 0, len(expenseRows)),
		CommissionCuts: make([]model.CommissionCut, 0, len(cutRows)),
	}
	for _, r := range txRows {
		in.Transactions = append(in.Transactions, s.transaction(r))
	}
	for _, r := range expenseRows {
		in.Expenses = append(in.Expenses, model.Expense{
			ID:          r.ID,
			FranchiseID: r.FranchiseID,
			Type:        model.ExpenseType(r.ExpenseType),
			Category:    model.ExpenseCategory(r.Category),
			Description: r.Description,
			Amount:      r.Amount,
			Date:        r.Date.UTC(),
		})
	}
	for _, r := range cutRows {
		role, err := model.ParseRole(r.Role)
		if err != nil {
			s.logger.Warn("Skipping commission cut",
				zap.String("op", "store.GormSource.Load"),
				zap.String("franchiseId", f.ID),
				zap.Error(err))
			continue
		}
		in.CommissionCuts = append(in.CommissionCuts, model.CommissionCut{
			FranchiseID:   r.FranchiseID,
			Role:          role,
			CutPerMillion: r.CutPerMillion,
		})
	}
	return in, nil
}

// transaction converts a row, tolerating legacy role encodings by dropping
// roles that cannot be decoded.
func (s *GormSource) transaction(r TransactionRow) model.Transaction {
	roles, err := ParseRoles(r.ManagerialRoles)
	if err != nil {
		s.logger.Warn("Ignoring undecodable managerial roles",
			zap.String("op", "store.GormSource.transaction"),
			zap.String("transactionId", r.ID),
			zap.Error(err))
		roles = nil
	}
	name := ProjectName(r.ProjectName)
	if name == "" {
		name = fallbackProjectName(r.ProjectID)
	}
	return model.Transaction{
		ID:                 r.ID,
		FranchiseID:        r.FranchiseID,
		ProjectID:          r.ProjectID,
		ProjectName:        name,
		TransactionAmount:  r.TransactionAmount,
		Stage:              model.Stage(r.Stage),
		StageUpdatedAt:     r.StageUpdatedAt.UTC(),
		ContractedAt:       utcPtr(r.ContractedAt),
		ExpectedPayoutDate: utcPtr(r.ExpectedPayoutDate),
		CommissionAmount:   r.CommissionAmount,
		GrossCommission:    r.GrossCommission,
		TaxAmount:          r.TaxAmount,
		WithholdingTax:     r.WithholdingTax,
		IncomeTax:          r.IncomeTax,
		NetCommission:      r.NetCommission,
		ManagerialRoles:    roles,
		Notes:              r.Notes,
	}
}

func (r FranchiseRow) toModel() model.Franchise {
	return model.Franchise{
		ID:        r.ID,
		Name:      r.Name,
		Slug:      r.Slug,
		Headcount: r.Headcount,
		IsActive:  r.IsActive,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Import copies every franchise of src, with its records, into the database.
// Rows are upserted by ID so an import can be repeated. Commission cuts of an
// imported franchise replace the stored ones.
func (s *GormSource) Import(ctx context.Context, src Source) (int, error) {
	franchises, err := src.Franchises(ctx)
	if err != nil {
		return 0, fmt.Errorf("list franchises: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range franchises {
			in, err := src.Load(ctx, f.ID)
			if err != nil {
				return fmt.Errorf("load franchise %q: %w", f.ID, err)
			}
			if err := importFranchise(tx, in); err != nil {
				return fmt.Errorf("import franchise %q: %w", f.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("imported franchises",
		zap.String("op", "store.GormSource.Import"),
		zap.Int("franchises", len(franchises)),
	)
	return len(franchises), nil
}

func importFranchise(tx *gorm.DB, in analytics.Input) error {
	f := in.Franchise
	if err := tx.Save(&FranchiseRow{
		ID:        f.ID,
		Name:      f.Name,
		Slug:      f.Slug,
		Headcount: f.Headcount,
		IsActive:  f.IsActive,
	}).Error; err != nil {
		return err
	}

	for _, t := range in.Transactions {
		roles, err := encodeRoles(t.ManagerialRoles)
		if err != nil {
			return err
		}
		if err := tx.Save(&TransactionRow{
			ID:                 t.ID,
			FranchiseID:        f.ID,
			ProjectID:          t.ProjectID,
			ProjectName:        t.ProjectName,
			TransactionAmount:  t.TransactionAmount,
			Stage:              string(t.Stage),
			StageUpdatedAt:     t.StageUpdatedAt,
			ContractedAt:       t.ContractedAt,
			ExpectedPayoutDate: t.ExpectedPayoutDate,
			CommissionAmount:   t.CommissionAmount,
			GrossCommission:    t.GrossCommission,
			TaxAmount:          t.TaxAmount,
			WithholdingTax:     t.WithholdingTax,
			IncomeTax:          t.IncomeTax,
			NetCommission:      t.NetCommission,
			ManagerialRoles:    roles,
			Notes:              t.Notes,
		}).Error; err != nil {
			return err
		}
	}

	for _, e := range in.Expenses {
		if err := tx.Save(&ExpenseRow{
			ID:          e.ID,
			FranchiseID: f.ID,
			ExpenseType: string(e.Type),
			Category:    string(e.Category),
			Description: e.Description,
			Amount:      e.Amount,
			Date:        e.Date,
		}).Error; err != nil {
			return err
		}
	}

	if in.CommissionCuts == nil {
		return nil
	}
	if err := tx.Where("franchise_id = ?", f.ID).Delete(&CommissionCutRow{}).Error; err != nil {
		return err
	}
	for _, c := range in.CommissionCuts {
		if err := tx.Create(&CommissionCutRow{
			FranchiseID:   f.ID,
			Role:          string(c.Role),
			CutPerMillion: c.CutPerMillion,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// encodeRoles stores roles as a JSON list, the format ParseRoles reads back.
func encodeRoles(roles []model.Role) (string, error) {
	if len(roles) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(roles)
	if err != nil {
		return "", fmt.Errorf("encode managerial roles: %w", err)
	}
	return string(raw), nil
}
