package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret         string
	MidtransServerKey string
	SendgridAPIKey    string
	DefaultFromEmail  string
)

// Knobs de agendamento e cobrança, ajustáveis por env sem redeploy.
var (
	GenerationBufferDays  = 14   // horizon padding beyond the calendar view
	GenerationBatchCap    = 20   // max new instances per series per call
	ExceptionHorizonDays  = 365  // default range for recurring exceptions
	ExceptionIterationCap = 1000 // safety bound against runaway series
	OrphanCutoffDays      = 45   // pendente instances whose series is gone
	ArchiveAfterMonths    = 18   // hard-delete threshold for closed classes
	DefaultPolicyHours    = 24   // fallback when a teacher has no policy
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Sem .env, usando variáveis do sistema")
		} else {
			log.Println("✅ .env carregado")
		}
	} else {
		log.Println("🚀 Running in Railway, usando ENV do sistema")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	MidtransServerKey = GetEnv("MIDTRANS_SERVER_KEY")
	SendgridAPIKey = GetEnv("SENDGRID_API_KEY")
	DefaultFromEmail = GetEnv("DEFAULT_FROM_EMAIL", "noreply@tutorflow.app")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET não definido!")
	}
	if MidtransServerKey == "" {
		log.Println("⚠️ MIDTRANS_SERVER_KEY não definido: pagamentos desativados")
	}
	if SendgridAPIKey == "" {
		log.Println("⚠️ SENDGRID_API_KEY não definido: e-mails vão para o console")
	}

	GenerationBufferDays = GetEnvInt("GENERATION_BUFFER_DAYS", GenerationBufferDays)
	GenerationBatchCap = GetEnvInt("GENERATION_BATCH_CAP", GenerationBatchCap)
	ExceptionHorizonDays = GetEnvInt("EXCEPTION_HORIZON_DAYS", ExceptionHorizonDays)
	ExceptionIterationCap = GetEnvInt("EXCEPTION_ITERATION_CAP", ExceptionIterationCap)
	OrphanCutoffDays = GetEnvInt("ORPHAN_CUTOFF_DAYS", OrphanCutoffDays)
	ArchiveAfterMonths = GetEnvInt("ARCHIVE_AFTER_MONTHS", ArchiveAfterMonths)
	DefaultPolicyHours = GetEnvInt("DEFAULT_POLICY_HOURS", DefaultPolicyHours)
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Printf("⚠️ %s inválido (%q), usando default %d", key, v, defaultValue)
	}
	return defaultValue
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[INFO] "+msg, data...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[WARN] "+msg, data...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[ERROR] "+msg, data...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	if err != nil {
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	} else if elapsed > l.SlowThreshold {
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
