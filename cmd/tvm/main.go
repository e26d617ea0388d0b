package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/openvault-labs/tvm/internal/auth"
	"github.com/openvault-labs/tvm/internal/clock"
	"github.com/openvault-labs/tvm/internal/config"
	"github.com/openvault-labs/tvm/internal/engine"
	"github.com/openvault-labs/tvm/internal/ledger"
	"github.com/openvault-labs/tvm/internal/logger"
	"github.com/openvault-labs/tvm/internal/state"
	"github.com/openvault-labs/tvm/internal/strategy"
	"github.com/openvault-labs/tvm/internal/treasury"
	"github.com/openvault-labs/tvm/internal/web"
)

const (
	SNAPSHOT_INTERVAL = 10 * time.Minute
)

// main is the entry point for the TVM system.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("TVM Core Logic Starting...")

	// Safety switch: refuse to run unless explicitly told to serve.
	if os.Getenv("TVM_MODE") != "serve" {
		log.Fatal().Msg("TVM_MODE is not set to 'serve'. Halting to prevent accidental execution. Set TVM_MODE=serve to run.")
	}

	// Initialize Database Connection (receipts and snapshots)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Collaborator Construction ---
	bank := treasury.NewBank()
	for account, amount := range config.GenesisBalances {
		if err := bank.Mint(account, amount); err != nil {
			log.Fatal().Err(err).Str("account", account).Msg("Failed to seed genesis balance")
		}
	}
	log.Info().Int("accounts", len(config.GenesisBalances)).Msg("Genesis balances seeded")

	vaultCustody, err := bank.Custody(config.VaultAccount)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create vault custody view")
	}
	poolCustody, err := bank.Custody(config.PoolAccount)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create pool custody view")
	}

	roles := auth.NewRoleTable()
	for _, capability := range []auth.Capability{
		auth.CapSetFees, auth.CapCollectFees, auth.CapRouteFunds,
		auth.CapUpdateRate, auth.CapTransferOwnership,
	} {
		roles.Grant(config.OwnerAccount, capability)
	}
	roles.Grant(config.AgentAccount, auth.CapRouteFunds)

	systemClock := clock.NewSystem()

	// --- 3. Ledger Construction ---
	shareLedger, err := ledger.NewShareLedger(ledger.ShareLedgerConfig{
		VaultAccount:        config.VaultAccount,
		Owner:               config.OwnerAccount,
		Treasury:            vaultCustody,
		Authorizer:          roles,
		DepositFeeBps:       config.DepositFeeBps,
		WithdrawalFeeBps:    config.WithdrawalFeeBps,
		PerformanceFeeBps:   config.PerformanceFeeBps,
		FeeRecipient:        config.FeeRecipient,
		MinLiquidityReserve: config.MinLiquidityReserve,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize share ledger")
	}

	interestLedger, err := ledger.NewInterestLedger(ledger.InterestLedgerConfig{
		PoolAccount:   config.PoolAccount,
		Treasury:      poolCustody,
		Authorizer:    roles,
		Clock:         systemClock,
		AnnualRateBps: config.AnnualRateBps,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize interest ledger")
	}

	strategies := strategy.NewRegistry()

	// --- 4. Create Engine Instance with Dependency Injection ---
	engineInstance, err := engine.NewEngine(engine.Config{
		ShareLedger:    shareLedger,
		InterestLedger: interestLedger,
		Strategies:     strategies,
		Executor:       strategy.NewNoopExecutor(),
		Clock:          systemClock,
		Persist:        true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create engine instance")
	}
	log.Info().Msg("Engine instance created successfully")

	// --- 5. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, strategies)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting TVM web API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 6. Start Snapshot Loop ---
	log.Info().Str("interval", SNAPSHOT_INTERVAL.String()).Msg("Starting engine snapshot loop")

	ctx := context.Background()
	engineInstance.RunLoop(ctx, SNAPSHOT_INTERVAL)
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
