package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openyield/vaultsim/chain"
	"github.com/openyield/vaultsim/config"
	"github.com/openyield/vaultsim/factory"
	"github.com/openyield/vaultsim/fixtures"
	"github.com/openyield/vaultsim/ledger"
	"github.com/openyield/vaultsim/strategy"
	"github.com/openyield/vaultsim/token"
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Run a mint-and-deposit scenario against a fresh vault and strategy",
	Long: `Deploy a fresh asset, vault and generic strategy, mint the configured
amount, deposit it into the strategy with the vault as receiver, and print
the resulting balances.

Example:
  vaultsim deposit --config run.yaml`,
	RunE: runDeposit,
}

var depositConfigPath string

func init() {
	rootCmd.AddCommand(depositCmd)

	depositCmd.Flags().StringVarP(&depositConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runDeposit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if depositConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(depositConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	var lg ledger.Ledger
	var err error
	if cfg.Ledger.Type == "sqlite" {
		lg, err = ledger.NewSQLite(cfg.Ledger.DBPath)
	} else {
		lg = ledger.NewMemory()
	}
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	defer lg.Close()

	gov := chain.NewAddress()
	asset := token.New(cfg.Asset.Name, cfg.Asset.Symbol, cfg.Asset.Decimals, gov, lg)
	fac := factory.New("Vault Factory", gov, lg)
	if cfg.Fees.Bps > 0 {
		if _, err := fac.SetProtocolFeeRecipient(gov, gov); err != nil {
			return err
		}
		if _, err := fac.SetProtocolFeeBps(gov, cfg.Fees.Bps); err != nil {
			return err
		}
	}

	vlt, _, err := fac.DeployNewVault(gov, asset, cfg.Vault.Name, cfg.Vault.Symbol, gov)
	if err != nil {
		return fmt.Errorf("deploy vault: %w", err)
	}
	strat, err := strategy.ByName("generic", asset, vlt.Address(), lg)
	if err != nil {
		return err
	}

	amount := chain.Units(cfg.Scenario.DepositUnits)
	if _, err := asset.Mint(gov, gov, amount); err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if _, err := asset.Approve(gov, strat.Address(), amount); err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	if _, err := strat.Deposit(gov, amount, vlt.Address()); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	fmt.Printf("Deposited %s %s into strategy %s\n",
		chain.FormatAmount(amount), asset.Symbol(), strat.Address())
	fmt.Printf("  strategy asset balance: %s\n", chain.FormatAmount(asset.BalanceOf(strat.Address())))
	fmt.Printf("  vault max withdraw:     %s\n", chain.FormatAmount(strat.MaxWithdraw(vlt.Address())))
	fmt.Printf("  vault empty:            %v\n", fixtures.CheckVaultEmpty(vlt))
	if cfg.Ledger.Type == "sqlite" {
		fmt.Printf("  ledger:                 %s\n", cfg.Ledger.DBPath)
	}
	return nil
}
