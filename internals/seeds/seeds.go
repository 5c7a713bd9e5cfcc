// Package seeds loads the demo fixtures embedded in data.yaml.
package seeds

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"garderie_backend/internals/constants"
	childModel "garderie_backend/internals/features/children/children/model"
	menuModel "garderie_backend/internals/features/menus/menus/model"
	menuService "garderie_backend/internals/features/menus/menus/service"
	authService "garderie_backend/internals/features/users/auth/service"
	userModel "garderie_backend/internals/features/users/user/model"
	"garderie_backend/internals/helpers/dbtime"
)

//go:embed data.yaml
var defaultData []byte

type UserSeed struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Phone    string `yaml:"phone"`
}

type ParentSeed struct {
	Name    string `yaml:"name"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
}

type ChildSeed struct {
	FirstName      string     `yaml:"first_name"`
	LastName       string     `yaml:"last_name"`
	DateOfBirth    string     `yaml:"date_of_birth"`
	Class          string     `yaml:"class"`
	PaymentMode    string     `yaml:"payment_mode"`
	EnrollmentDate string     `yaml:"enrollment_date"`
	Parent         ParentSeed `yaml:"parent"`
}

type MenuSeed struct {
	WeekStartDate string                `yaml:"week_start_date"`
	Meals         menuModel.WeeklyMeals `yaml:"meals"`
}

type Data struct {
	Users    []UserSeed  `yaml:"users"`
	Children []ChildSeed `yaml:"children"`
	Menus    []MenuSeed  `yaml:"menus"`
}

// Result counts inserted rows; existing rows are skipped.
type Result struct {
	Users    int
	Children int
	Menus    int
}

func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}
	return &d, nil
}

// RunDefault seeds the embedded fixtures.
func RunDefault(ctx context.Context, db *gorm.DB, log *zap.Logger) (Result, error) {
	d, err := Parse(defaultData)
	if err != nil {
		return Result{}, err
	}
	return Run(ctx, db, d, log)
}

// Run inserts d inside one transaction. Users match on email, children on
// name and birth date, menus on week.
func Run(ctx context.Context, db *gorm.DB, d *Data, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if res.Users, err = seedUsers(tx, d.Users, log); err != nil {
			return err
		}
		if res.Children, err = seedChildren(tx, d.Children, log); err != nil {
			return err
		}
		res.Menus, err = seedMenus(tx, d.Menus, log)
		return err
	})
	return res, err
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func seedUsers(tx *gorm.DB, list []UserSeed, log *zap.Logger) (int, error) {
	n := 0
	for _, u := range list {
		email := userModel.NormalizeEmail(u.Email)
		var exists int64
		if err := tx.Model(&userModel.UserModel{}).Where("email = ?", email).Count(&exists).Error; err != nil {
			return n, err
		}
		if exists > 0 {
			log.Info("user exists, skipped", zap.String("email", email))
			continue
		}
		role := strings.ToLower(strings.TrimSpace(u.Role))
		if role == "" {
			role = constants.RoleStaff
		}
		if !constants.ValidRole(role) {
			return n, fmt.Errorf("user %s: unknown role %q", email, u.Role)
		}
		hash, err := authService.HashPassword(u.Password)
		if err != nil {
			return n, fmt.Errorf("hash password for %s: %w", email, err)
		}
		if err := tx.Create(&userModel.UserModel{
			Name:     strings.TrimSpace(u.Name),
			Email:    email,
			Password: hash,
			Role:     role,
			Phone:    optional(u.Phone),
			IsActive: true,
		}).Error; err != nil {
			return n, fmt.Errorf("create user %s: %w", email, err)
		}
		n++
	}
	return n, nil
}

func seedChildren(tx *gorm.DB, list []ChildSeed, log *zap.Logger) (int, error) {
	n := 0
	for _, c := range list {
		dob, err := dbtime.ParseDate(c.DateOfBirth)
		if err != nil {
			return n, fmt.Errorf("child %s %s: %w", c.FirstName, c.LastName, err)
		}
		enrolled, err := dbtime.ParseDateOr(c.EnrollmentDate, dbtime.StartOfDay(dbtime.Now()))
		if err != nil {
			return n, fmt.Errorf("child %s %s: %w", c.FirstName, c.LastName, err)
		}
		class := childModel.ChildClass(c.Class)
		mode := childModel.PaymentMode(c.PaymentMode)
		if !class.Valid() || !mode.Valid() {
			return n, fmt.Errorf("child %s %s: invalid class or payment mode", c.FirstName, c.LastName)
		}

		var exists int64
		if err := tx.Model(&childModel.ChildModel{}).
			Where("first_name = ? AND last_name = ? AND date_of_birth = ?", c.FirstName, c.LastName, dob).
			Count(&exists).Error; err != nil {
			return n, err
		}
		if exists > 0 {
			log.Info("child exists, skipped", zap.String("name", c.FirstName+" "+c.LastName))
			continue
		}
		if err := tx.Create(&childModel.ChildModel{
			FirstName:      c.FirstName,
			LastName:       c.LastName,
			DateOfBirth:    dob,
			Class:          class,
			PaymentMode:    mode,
			ParentName:     c.Parent.Name,
			ParentPhone:    c.Parent.Phone,
			ParentEmail:    optional(c.Parent.Email),
			ParentAddress:  optional(c.Parent.Address),
			IsActive:       true,
			EnrollmentDate: enrolled,
		}).Error; err != nil {
			return n, fmt.Errorf("create child %s %s: %w", c.FirstName, c.LastName, err)
		}
		n++
	}
	return n, nil
}

func seedMenus(tx *gorm.DB, list []MenuSeed, log *zap.Logger) (int, error) {
	if len(list) == 0 {
		return 0, nil
	}
	var author userModel.UserModel
	if err := tx.Where("role = ?", constants.RoleAdmin).Order("created_at ASC").First(&author).Error; err != nil {
		return 0, fmt.Errorf("menus need an admin author: %w", err)
	}
	n := 0
	for _, m := range list {
		start, end, err := menuService.WeekOf(m.WeekStartDate)
		if err != nil {
			return n, err
		}
		var exists int64
		if err := tx.Model(&menuModel.MenuModel{}).Where("week_start_date = ?", start).Count(&exists).Error; err != nil {
			return n, err
		}
		if exists > 0 {
			log.Info("menu exists, skipped", zap.Time("week_start", start))
			continue
		}
		if err := tx.Create(&menuModel.MenuModel{
			WeekStartDate: start,
			WeekEndDate:   end,
			Meals:         datatypes.NewJSONType(m.Meals),
			CreatedBy:     author.ID,
			IsActive:      true,
		}).Error; err != nil {
			return n, fmt.Errorf("create menu: %w", err)
		}
		n++
	}
	return n, nil
}
