package app

import (
	"time"

	"github.com/dashfault/dashfault-backend/internal/platform/envutil"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

type Config struct {
	Port             string
	JWTSecretKey     string
	PresignTTL       time.Duration
	AIServerURL      string
	CaseTableCSVPath string
	ReportFontPath   string
}

func LoadConfig(log *logger.Logger) Config {
	port := envutil.GetEnv("PORT", "8080", log)
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	presignTTLSeconds := envutil.GetEnvAsInt("PRESIGN_TTL_SECONDS", 300, log)
	aiServerURL := envutil.GetEnv("AI_SERVER_URL", "", log)
	caseTablePath := envutil.GetEnv("CASE_TABLE_CSV_PATH", "assets/accident_case_table.csv", log)
	reportFontPath := envutil.GetEnv("REPORT_FONT_PATH", "assets/NotoSans-Regular.ttf", log)
	return Config{
		Port:             port,
		JWTSecretKey:     jwtSecretKey,
		PresignTTL:       time.Duration(presignTTLSeconds) * time.Second,
		AIServerURL:      aiServerURL,
		CaseTableCSVPath: caseTablePath,
		ReportFontPath:   reportFontPath,
	}
}
