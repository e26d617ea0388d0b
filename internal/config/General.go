package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// VaultAccount is the custodial identity holding the vault's assets.
	VaultAccount string
	// PoolAccount is the custodial identity holding the lending pool's
	// principal and interest reserve.
	PoolAccount string
	// OwnerAccount is the administrative owner of the vault; it receives
	// every capability grant at startup.
	OwnerAccount string
	// AgentAccount is the delegate allowed to route vault funds to
	// registered strategies.
	AgentAccount string
	// FeeRecipient receives fee proceeds. May be empty when all fees are zero.
	FeeRecipient string

	// DepositFeeBps is the initial deposit fee rate (ceiling 1000).
	DepositFeeBps uint64
	// WithdrawalFeeBps is the initial withdrawal fee rate (ceiling 1000).
	WithdrawalFeeBps uint64
	// PerformanceFeeBps is the initial performance fee rate (ceiling 3000).
	PerformanceFeeBps uint64
	// AnnualRateBps is the lending pool's initial interest rate (ceiling 10000).
	AnnualRateBps uint64

	// MinLiquidityReserve is the asset quantity that must remain after any
	// outbound strategy routing.
	MinLiquidityReserve sdkmath.Int

	// GenesisBalances seeds the in-process bank, keyed by account identity.
	GenesisBalances map[string]sdkmath.Int
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	VaultAccount, err = getEnv("TVM_VAULT_ACCOUNT")
	if err != nil {
		return err
	}

	PoolAccount, err = getEnv("TVM_POOL_ACCOUNT")
	if err != nil {
		return err
	}

	OwnerAccount, err = getEnv("TVM_OWNER_ACCOUNT")
	if err != nil {
		return err
	}

	AgentAccount, err = getEnv("TVM_AGENT_ACCOUNT")
	if err != nil {
		return err
	}

	// Optional: fees may be collected later once a recipient is configured.
	FeeRecipient = os.Getenv("TVM_FEE_RECIPIENT")

	DepositFeeBps, err = getEnvAsUint64("TVM_DEPOSIT_FEE_BPS")
	if err != nil {
		return err
	}

	WithdrawalFeeBps, err = getEnvAsUint64("TVM_WITHDRAWAL_FEE_BPS")
	if err != nil {
		return err
	}

	PerformanceFeeBps, err = getEnvAsUint64("TVM_PERFORMANCE_FEE_BPS")
	if err != nil {
		return err
	}

	AnnualRateBps, err = getEnvAsUint64("TVM_ANNUAL_RATE_BPS")
	if err != nil {
		return err
	}

	MinLiquidityReserve, err = getEnvAsInt("TVM_MIN_LIQUIDITY_RESERVE")
	if err != nil {
		return err
	}

	GenesisBalances, err = getEnvAsBalances("TVM_GENESIS_BALANCES")
	if err != nil {
		return err
	}

	log.Debug().
		Str("VaultAccount", VaultAccount).
		Str("PoolAccount", PoolAccount).
		Str("OwnerAccount", OwnerAccount).
		Str("AgentAccount", AgentAccount).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsInt retrieves an environment variable as a non-negative sdkmath.Int.
func getEnvAsInt(key string) (sdkmath.Int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	value, ok := sdkmath.NewIntFromString(valueStr)
	if !ok || value.IsNegative() {
		return sdkmath.ZeroInt(), errors.New("environment variable " + key + " must be a non-negative integer, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsBalances parses a JSON object of account -> amount strings.
func getEnvAsBalances(key string) (map[string]sdkmath.Int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(valueStr), &raw); err != nil {
		return nil, fmt.Errorf("environment variable %s must be a JSON object of account to amount: %w", key, err)
	}

	balances := make(map[string]sdkmath.Int, len(raw))
	for account, amountStr := range raw {
		if account == "" {
			return nil, fmt.Errorf("environment variable %s contains an empty account identity", key)
		}
		amount, ok := sdkmath.NewIntFromString(amountStr)
		if !ok || amount.IsNegative() {
			return nil, fmt.Errorf("environment variable %s has invalid amount %q for account %s", key, amountStr, account)
		}
		balances[account] = amount
	}
	return balances, nil
}
