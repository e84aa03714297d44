package config

import (
	"errors"
	"fmt"

	"emptio-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// DB is the shared database handle, set by InitDB.
	DB *gorm.DB

	// C holds the loaded application configuration.
	C *AppConfig

	// JWTSecret signs and verifies auth tokens.
	JWTSecret = []byte("emptio_super_secret_2024")
)

// AppConfig is loaded from a .env file and/or environment variables.
type AppConfig struct {
	Environment string `mapstructure:"APP_ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	Port        string `mapstructure:"PORT"`
	DBPath      string `mapstructure:"DB_PATH"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	EmailHost     string `mapstructure:"EMAIL_HOST"`
	EmailPort     int    `mapstructure:"EMAIL_PORT"`
	EmailUser     string `mapstructure:"EMAIL_USER"`
	EmailPass     string `mapstructure:"EMAIL_PASS"`
	EmailFromName string `mapstructure:"EMAIL_FROM_NAME"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "PORT", "DB_PATH", "JWT_SECRET", "FRONTEND_URL",
		"EMAIL_HOST", "EMAIL_PORT", "EMAIL_USER", "EMAIL_PASS", "EMAIL_FROM_NAME",
		"ADMIN_EMAIL", "ADMIN_PASSWORD",
	} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "5000")
	v.SetDefault("DB_PATH", "emptio.db")
	v.SetDefault("FRONTEND_URL", "http://localhost:5175")
	v.SetDefault("EMAIL_HOST", "smtp.gmail.com")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("EMAIL_FROM_NAME", "Emptio")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	C = &cfg
	if cfg.JWTSecret != "" {
		JWTSecret = []byte(cfg.JWTSecret)
	}
	return &cfg, nil
}

// InitDB opens the sqlite database and migrates all models.
// Tests pass ":memory:" here.
func InitDB(dsn string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Review{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedAdmin creates the admin account if it does not exist yet.
func SeedAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	if err := DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Admin User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	return DB.Create(&admin).Error
}
