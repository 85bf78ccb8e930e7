// nara-cli is a headless client for the NARA mining ledger.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/NARAProtocol/nara-simple-ui/config"
	"github.com/NARAProtocol/nara-simple-ui/internal/epoch"
	"github.com/NARAProtocol/nara-simple-ui/internal/history"
	"github.com/NARAProtocol/nara-simple-ui/internal/ledger"
	"github.com/NARAProtocol/nara-simple-ui/internal/log"
	"github.com/NARAProtocol/nara-simple-ui/internal/mining"
	"github.com/NARAProtocol/nara-simple-ui/internal/storage"
	"github.com/NARAProtocol/nara-simple-ui/internal/submit"
	"github.com/NARAProtocol/nara-simple-ui/internal/wallet"
	"github.com/NARAProtocol/nara-simple-ui/pkg/errs"
	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Global flags appearing before the subcommand.
	network := string(config.Mainnet)
	dataDir := ""
	endpoint := ""

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--endpoint" && len(args) > 1:
			endpoint = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--endpoint="):
			endpoint = args[0][len("--endpoint="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg := config.Default(config.NetworkType(network))
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if endpoint != "" {
		cfg.Endpoints = []string{endpoint}
	}
	if err := config.Validate(cfg); err != nil {
		fatal("invalid configuration: %v", err)
	}
	if err := log.Init("warn", false, ""); err != nil {
		fatal("log init: %v", err)
	}

	switch args[0] {
	case "status":
		cmdStatus(cfg, args[1:])
	case "mine":
		cmdMine(cfg, args[1:])
	case "finalize":
		cmdFinalize(cfg, args[1:])
	case "claim":
		cmdClaim(cfg, args[1:])
	case "history":
		cmdHistory(cfg, args[1:])
	case "wallet":
		cmdWallet(cfg, args[1:])
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: nara-cli [global flags] <command> [flags]

Global flags:
  --network <net>     mainnet (default) or testnet
  --datadir <path>    Data directory (default: platform data dir)
  --endpoint <url>    Single read endpoint (default: network endpoint list)

Commands:
  status --wallet <w>              Show epoch, caps, and pending mines
  mine --wallet <w> --tickets <n>  Request mine tickets (paid)
  finalize --wallet <w>            Finalize pending mines that fit the cap
  claim --wallet <w>               Claim rewards that fit the pool budget
  history --wallet <w>             Show persisted claim history

  wallet create --name <n>         Create a new wallet
  wallet import --name <n> --mnemonic "..."
                                   Import wallet from mnemonic
  wallet list                      List wallets
  wallet delete --name <n>         Delete a wallet file
`)
}

// walletFlag pulls --wallet out of args, falling back to the only
// wallet in the keystore when unambiguous.
func walletFlag(cfg *config.Config, args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "--wallet" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(args[i], "--wallet=") {
			return args[i][len("--wallet="):]
		}
	}
	ks, err := wallet.NewKeystore(cfg.KeystorePath())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(names) == 1 {
		return names[0]
	}
	fatal("--wallet required (found %d wallets)", len(names))
	return ""
}

func flagValue(args []string, name string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "--"+name && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(args[i], "--"+name+"=") {
			return args[i][len("--"+name+"="):]
		}
	}
	return ""
}

// cliSession bundles everything an operation command needs.
type cliSession struct {
	cfg        *config.Config
	account    *wallet.Account
	client     *ledger.Client
	controller *mining.Controller
	store      *history.Store
	db         storage.DB
}

func openSession(cfg *config.Config, walletName string, unlock bool) *cliSession {
	client, err := ledger.New(cfg.Endpoints)
	if err != nil {
		fatal("ledger client: %v", err)
	}

	ks, err := wallet.NewKeystore(cfg.KeystorePath())
	if err != nil {
		fatal("open keystore: %v", err)
	}

	var acct *wallet.Account
	if unlock {
		password, err := readPassword("Wallet password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
		acct, err = wallet.Unlock(ks, walletName, password, 0)
		if err != nil {
			fatal("unlock wallet: %v", err)
		}
		acct.SetApproval(confirmTx)
	} else {
		// Status and history only need the address; derive it from the
		// stored account metadata without touching the seed.
		accounts, err := ks.ListAccounts(walletName)
		if err != nil || len(accounts) == 0 {
			fatal("wallet %q has no recorded accounts", walletName)
		}
		addr, err := types.ParseAddress(accounts[0].Address)
		if err != nil {
			fatal("corrupt account record: %v", err)
		}
		acct = &wallet.Account{Name: walletName, Address: addr}
	}

	var db storage.DB
	db, err = storage.NewBadger(cfg.StorePath())
	if err != nil {
		db = storage.NewMemory()
	}
	store := history.NewStore(db, cfg.LedgerID())
	if err := store.EnsureLedger(); err != nil {
		fatal("ledger identity check: %v", err)
	}

	submitter := submit.New(client, acct, acct.Address, cfg.LedgerContract)
	ctrl := mining.New(client, submitter, epoch.New(config.EpochDuration), acct.Address)
	ctrl.SetRecorder(store.ForAccount(acct.Address))

	return &cliSession{
		cfg:        cfg,
		account:    acct,
		client:     client,
		controller: ctrl,
		store:      store,
		db:         db,
	}
}

func (s *cliSession) close() {
	s.account.Lock()
	_ = s.db.Close()
}

// confirmTx prints the transaction and asks for a y/N confirmation.
func confirmTx(_ context.Context, tx *submit.Tx) bool {
	fmt.Printf("\nAbout to sign %s", tx.Method)
	if len(tx.Args) > 0 {
		fmt.Printf(" args=%v", tx.Args)
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		fmt.Printf(" value=%s NARA", types.FormatNara(tx.Value))
	}
	fmt.Print("\nProceed? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func cmdStatus(cfg *config.Config, args []string) {
	sess := openSession(cfg, walletFlag(cfg, args), false)
	defer sess.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sess.controller.Refresh(ctx); err != nil {
		fatal("fetch dashboard: %v", err)
	}
	snap := sess.controller.Snapshot()

	fmt.Printf("Network:        %s\n", cfg.Network)
	fmt.Printf("Address:        %s\n", sess.account.Address)
	fmt.Printf("Epoch:          %d (%d:%02d remaining)\n",
		snap.Epoch, snap.SecondsRemaining/60, snap.SecondsRemaining%60)
	fmt.Printf("Tickets:        %d/%d used, %d pending, %d mineable\n",
		snap.UsedTickets, snap.EffectiveCap, snap.PendingMines, snap.RemainingCapacity)
	fmt.Printf("Eligible:       %v\n", snap.CanMine)
	fmt.Printf("Reward pool:    %s NARA\n", types.FormatNara(snap.RewardPool))
	fmt.Printf("Contract bal:   %s NARA\n", types.FormatNara(snap.ContractBalance))
}

func cmdMine(cfg *config.Config, args []string) {
	ticketsStr := flagValue(args, "tickets")
	if ticketsStr == "" {
		ticketsStr = "1"
	}
	tickets, err := strconv.ParseUint(ticketsStr, 10, 32)
	if err != nil || tickets == 0 {
		fatal("invalid --tickets %q", ticketsStr)
	}

	sess := openSession(cfg, walletFlag(cfg, args), true)
	defer sess.close()

	cost := types.FormatNara(config.TicketPrice())
	fmt.Printf("Requesting %d ticket(s) at %s NARA each\n", tickets, cost)

	ref, err := sess.controller.Mine(context.Background(), tickets)
	if err != nil {
		exitOp(err)
	}
	fmt.Printf("Mine confirmed: %s\n", ref)
}

func cmdFinalize(cfg *config.Config, args []string) {
	sess := openSession(cfg, walletFlag(cfg, args), true)
	defer sess.close()

	res, err := sess.controller.Finalize(context.Background())
	if err != nil {
		exitOp(err)
	}
	if res.Finalized < res.Requested {
		fmt.Printf("Finalized %d of %d pending mines (epoch cap reached; %d left)\n",
			res.Finalized, res.Requested, res.Requested-res.Finalized)
	} else {
		fmt.Printf("Finalized %d pending mine(s)\n", res.Finalized)
	}
	fmt.Printf("Tx: %s\n", res.Ref)
}

func cmdClaim(cfg *config.Config, args []string) {
	sess := openSession(cfg, walletFlag(cfg, args), true)
	defer sess.close()

	res, err := sess.controller.Claim(context.Background())
	if err != nil {
		exitOp(err)
	}
	fmt.Printf("Claimed %s NARA from %d epoch(s)\n", types.FormatNara(res.Amount), len(res.Epochs))
	fmt.Printf("Tx: %s\n", res.Ref)
}

func cmdHistory(cfg *config.Config, args []string) {
	sess := openSession(cfg, walletFlag(cfg, args), false)
	defer sess.close()

	records, err := sess.store.Claims(sess.account.Address)
	if err != nil {
		fatal("read history: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("No claims recorded.")
		return
	}
	for _, rec := range records {
		wei, err := types.ParseWei(rec.Amount)
		amount := rec.Amount
		if err == nil {
			amount = types.FormatNara(wei)
		}
		fmt.Printf("%s  %s NARA  epochs %v  %s\n",
			rec.Timestamp.Format("2006-01-02 15:04"), amount, rec.Epochs, rec.Ref)
	}
}

func cmdWallet(cfg *config.Config, args []string) {
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	ks, err := wallet.NewKeystore(cfg.KeystorePath())
	if err != nil {
		fatal("open keystore: %v", err)
	}

	switch args[0] {
	case "create":
		name := flagValue(args[1:], "name")
		if name == "" {
			fatal("--name required")
		}
		mnemonic, err := wallet.GenerateMnemonic()
		if err != nil {
			fatal("generate mnemonic: %v", err)
		}
		addr := createFromMnemonic(ks, name, mnemonic)
		fmt.Printf("Wallet %q created.\nAddress: %s\n\n", name, addr)
		fmt.Println("Recovery mnemonic (write it down, it is shown once):")
		fmt.Printf("\n  %s\n", mnemonic)
	case "import":
		name := flagValue(args[1:], "name")
		mnemonic := flagValue(args[1:], "mnemonic")
		if name == "" || mnemonic == "" {
			fatal("--name and --mnemonic required")
		}
		if !wallet.ValidateMnemonic(mnemonic) {
			fatal("invalid mnemonic")
		}
		addr := createFromMnemonic(ks, name, mnemonic)
		fmt.Printf("Wallet %q imported.\nAddress: %s\n", name, addr)
	case "list":
		names, err := ks.List()
		if err != nil {
			fatal("list wallets: %v", err)
		}
		if len(names) == 0 {
			fmt.Println("No wallets. Run: nara-cli wallet create --name <n>")
			return
		}
		for _, name := range names {
			line := name
			if accounts, err := ks.ListAccounts(name); err == nil && len(accounts) > 0 {
				line += "  " + accounts[0].Address
			}
			fmt.Println(line)
		}
	case "delete":
		name := flagValue(args[1:], "name")
		if name == "" {
			fatal("--name required")
		}
		if err := ks.Delete(name); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Wallet %q deleted.\n", name)
	default:
		fmt.Fprintf(os.Stderr, "Unknown wallet command: %s\n", args[0])
		os.Exit(1)
	}
}

func createFromMnemonic(ks *wallet.Keystore, name, mnemonic string) types.Address {
	password, err := readPassword("New wallet password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	addr, err := ks.Create(name, seed, password, wallet.DefaultParams())
	if err != nil {
		fatal("create wallet: %v", err)
	}
	return addr
}

// exitOp reports an operation failure. Declined signatures exit quietly.
func exitOp(err error) {
	if errs.Silent(err) {
		fmt.Println("Cancelled.")
		os.Exit(0)
	}
	msg := errs.UserMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	fatal("%s", msg)
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return password, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
