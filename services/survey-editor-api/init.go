package main

import (
	"log/slog"
	"os"

	"github.com/case-framework/survey-editor-backend/pkg/apihelpers"
	"github.com/case-framework/survey-editor-backend/pkg/db"
	"github.com/case-framework/survey-editor-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	surveydraftsDB "github.com/case-framework/survey-editor-backend/pkg/db/survey-drafts"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_STUDY_DB_USERNAME            = "STUDY_DB_USERNAME"
	ENV_STUDY_DB_PASSWORD            = "STUDY_DB_PASSWORD"
	ENV_MANAGEMENT_USER_JWT_SIGN_KEY = "MANAGEMENT_USER_JWT_SIGN_KEY"
)

type SurveyEditorApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	UserManagementConfig struct {
		ManagementUserJWTSignKey string `json:"management_user_jwt_sign_key" yaml:"management_user_jwt_sign_key"`
	} `json:"user_management_config" yaml:"user_management_config"`

	AllowedInstanceIDs []string `json:"allowed_instance_ids" yaml:"allowed_instance_ids"`

	// DB configs
	DBConfigs struct {
		StudyDB db.DBConfigYaml `json:"study_db" yaml:"study_db"`
	} `json:"db_configs" yaml:"db_configs"`

	EditorConfig struct {
		// delay between the last change of a draft and saving it, e.g. "2s"
		SaveDelay string `json:"save_delay" yaml:"save_delay"`
	} `json:"editor_config" yaml:"editor_config"`
}

var (
	conf                 SurveyEditorApiConfig
	surveyDraftDBService *surveydraftsDB.SurveyDraftDBService
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	utils.InitLogger(conf.Logging)

	secretsOverride()

	if conf.UserManagementConfig.ManagementUserJWTSignKey == "" {
		panic("management user JWT sign key missing")
	}

	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_STUDY_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.StudyDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_STUDY_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.StudyDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_MANAGEMENT_USER_JWT_SIGN_KEY); signKey != "" {
		conf.UserManagementConfig.ManagementUserJWTSignKey = signKey
	}
}

func initDBs() {
	var err error
	surveyDraftDBService, err = surveydraftsDB.NewSurveyDraftDBService(db.DBConfigFromYamlObj(conf.DBConfigs.StudyDB, conf.AllowedInstanceIDs))
	if err != nil {
		slog.Error("Error connecting to Study DB", slog.String("error", err.Error()))
		panic(err)
	}
}
