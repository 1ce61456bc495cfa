package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/jagaapp/jaga/server/auth/key"
	"github.com/jagaapp/jaga/server/dispatch"
	"github.com/jagaapp/jaga/server/escalation"
	"github.com/jagaapp/jaga/server/gstorage"
	"github.com/jagaapp/jaga/server/logger"
	"github.com/jagaapp/jaga/server/models"
	"github.com/jagaapp/jaga/server/push"
	"github.com/jagaapp/jaga/server/registry"
	"github.com/jagaapp/jaga/server/speech"
	"github.com/jagaapp/jaga/server/twilio"
	"github.com/jagaapp/jaga/server/work"
	"github.com/jagaapp/jaga/shared"
	"github.com/jagaapp/jaga/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const dbFileName = "jaga.db"

var (
	logg     *zap.SugaredLogger
	validate *validator.Validate

	authKeyPair       *key.KeyPair
	contactRegistry   *registry.Registry
	escalationManager *escalation.Manager
	tokenLifecycle    *push.LifecycleManager
	gstorageClient    *gstorage.Client

	dbPath string
)

// Start wires up every component & serves until interrupted.
func Start(config *viper.Viper, devMode bool) {
	logg = logger.NewLogger(devMode)

	serverConfig := parseServerConfig(config)

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem(serverConfig.Jaga.PrivateKeyPem)
	fatalOnError(err)
	authKeyPair = keyPair

	validate = validator.New()
	fatalOnError(RegisterValidators(validate))

	dataDir := dataDirectory(devMode)
	dbPath = filepath.Join(dataDir, dbFileName)

	backupEnabled := serverConfig.Google.Storage.EnableSqliteBackupAndSync == true
	if backupEnabled {
		gstorageClient, err = gstorage.NewClient(
			context.Background(),
			serverConfig.Google.ApplicationCredentials,
			serverConfig.Google.Storage.Bucket,
			serverConfig.Google.Storage.Prefix,
		)
		fatalOnError(err)
		maybeRestoreSqliteDb()
	}

	fatalOnError(models.InitializeDb(dbPath, serverConfig.Sqlite.PassPhrase))

	contactRegistry = registry.NewRegistry(logg)

	// The server has no device-local push source; tokens arrive from the
	// clients over login & the device_token endpoint, so only the Register
	// path of the lifecycle manager runs here.
	tokenLifecycle = push.NewLifecycleManager(nil, logg)

	smsNotifier := twilio.NewNotifier(serverConfig.Twilio, logg, devMode)
	pushChannel := push.NewFcmChannel(serverConfig.Fcm.ServerKey, serverConfig.Fcm.Endpoint)
	dispatcher := dispatch.NewDispatcher(pushChannel, smsNotifier, logg)

	escalationManager = escalation.NewManager(
		contactRegistry,
		dispatcher,
		&speech.LogSynthesizer{Logg: logg},
		time.Duration(serverConfig.Jaga.Escalation.DwellTimeInMillis)*time.Millisecond,
		logg,
	)

	workerAdapter := work.NewWorkerAdapter(serverConfig.Jaga.Cron.TimeZone, logg)
	registerJobHandlers(workerAdapter)
	enqueueJobs(workerAdapter, serverConfig)
	workerAdapter.Start()

	httpServer := &http.Server{
		Handler:      router(),
		Addr:         fmt.Sprintf(":%v", serverConfig.Jaga.Listener.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	go serve(httpServer)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(workerAdapter, httpServer, backupEnabled)
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware, initialContextMiddleware)

	r.HandleFunc("/healthz", healthCheck).Methods("GET")
	r.HandleFunc("/.well-known/jwks.json", jwks).Methods("GET")
	r.HandleFunc("/signup", createUser).Methods("POST")
	r.HandleFunc("/login", logIn).Methods("POST")

	protected := r.PathPrefix("/v1/users/{uid:[0-9]+}").Subrouter()
	protected.Use(protectedRouteMiddleware)

	protected.HandleFunc("", findUser).Methods("GET")
	protected.HandleFunc("", updateUser).Methods("PUT")
	protected.HandleFunc("/device_token", registerDeviceToken).Methods("PUT")

	protected.HandleFunc("/contacts", listContacts).Methods("GET")
	protected.HandleFunc("/contacts", createContact).Methods("POST")
	protected.HandleFunc("/contacts/emergency", emergencyContacts).Methods("GET")
	protected.HandleFunc("/contacts/{id}", updateContact).Methods("PUT")
	protected.HandleFunc("/contacts/{id}", deleteContact).Methods("DELETE")

	protected.HandleFunc("/incident", openIncident).Methods("POST")
	protected.HandleFunc("/incident", currentIncident).Methods("GET")
	protected.HandleFunc("/incident", abandonIncident).Methods("DELETE")
	protected.HandleFunc("/incident/notify", notifyIncident).Methods("POST")
	protected.HandleFunc("/incident/safe", markIncidentSafe).Methods("POST")
	protected.HandleFunc("/incident/reset", resetIncident).Methods("POST")
	protected.HandleFunc("/incident/help", callForHelp).Methods("POST")
	protected.HandleFunc("/incident/history", incidentHistory).Methods("GET")

	return r
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func parseServerConfig(config *viper.Viper) *shared.ServerConfig {
	serverConfig := &shared.ServerConfig{}

	fatalOnError(config.Unmarshal(serverConfig))

	err := validator.New().Struct(serverConfig)
	if err != nil {
		logg.Fatalf("invalid server config: %v", strings.ReplaceAll(err.Error(), "\n", "; "))
	}

	return serverConfig
}

func serve(httpServer *http.Server) {
	logg.Infof("Jaga server is listening on port%v", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerAdapter *work.WorkerPoolAdapter, httpServer *http.Server, backupDb bool) {
	workerAdapter.Stop()

	if backupDb {
		if err := backupSqliteDb(nil); err != nil {
			logg.Error(err)
		}
	}

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Jaga server shutdown failed:%+s", err)
	}

	logg.Infof("Jaga server stopped properly")
}

// maybeRestoreSqliteDb pulls the last database backup before the first
// boot on a fresh host. An existing local db always wins.
func maybeRestoreSqliteDb() {
	if utils.FileExist(dbPath) {
		return
	}

	err := gstorageClient.DownloadFile(context.Background(), dbFileName, dbPath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Infof("no remote database backup found, starting fresh")
		return
	}
	if err != nil {
		logg.Errorf("unable to restore database backup: %v", err)
		return
	}

	logg.Infof("restored database backup to %v", dbPath)
}

// dataDirectory retrieves the directory jaga stores its data in, or exits
// if it can't be created.
func dataDirectory(devMode bool) string {
	dataFolderName := "jaga"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		dataFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	dataDir := filepath.Join(rootDir, dataFolderName)
	fatalOnError(utils.CreateDirIfNotExist(dataDir))

	return dataDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
