package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	"github.com/thankyoudoc/thankyoudoc-api/internal/bootstrap"
	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// withOverrideStore opens the same quick-login flag store the server uses.
func withOverrideStore(cmdCtx *commandContext, fn func(store ports.OverrideStore) error) error {
	qlCfg := cmdCtx.Config.Auth.QuickLogin
	if qlCfg.Store == config.QuickLoginStoreMemory {
		return errors.New("QUICK_LOGIN_STORE=memory is process-local; use file or redis to manage flags from the CLI")
	}

	var client redis.UniversalClient
	if qlCfg.Store == config.QuickLoginStoreRedis {
		c, err := maybeConnectRedis(cmdCtx.Logger, &cmdCtx.Config.Redis)
		if err != nil {
			return err
		}
		defer closeRedis(cmdCtx.Logger, c)
		client = c
	}

	store, err := bootstrap.BuildOverrideStore(qlCfg, client, cmdCtx.Logger)
	if err != nil {
		return err
	}
	return fn(store)
}

// quickLoginFlags holds the flags shared by the quick-login commands. The
// client id is the value of the browser's quick_login cookie.
type quickLoginFlags struct {
	client string
	grant  service.QuickLoginGrant
}

func parseQuickLoginFlags(name string, args []string, withGrant bool) (quickLoginFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var client, grant string
	fs.StringVar(&client, "client", "", "Quick-login client id (the quick_login cookie value)")
	if withGrant {
		fs.StringVar(&grant, "grant", "", "Flag to set: superadmin or admin")
	}
	if err := fs.Parse(args); err != nil {
		return quickLoginFlags{}, err
	}

	out := quickLoginFlags{client: strings.TrimSpace(client)}
	if out.client == "" {
		return quickLoginFlags{}, errors.New("--client is required")
	}
	if !withGrant {
		return out, nil
	}
	switch g := service.QuickLoginGrant(strings.ToLower(strings.TrimSpace(grant))); g {
	case service.GrantSuperAdmin, service.GrantAdmin:
		out.grant = g
		return out, nil
	default:
		return quickLoginFlags{}, fmt.Errorf("--grant must be %q or %q", service.GrantSuperAdmin, service.GrantAdmin)
	}
}

func runQuickLoginSet(cmdCtx *commandContext, args []string) error {
	flags, err := parseQuickLoginFlags("quick-login-set", args, true)
	if err != nil {
		return err
	}
	return withOverrideStore(cmdCtx, func(store ports.OverrideStore) error {
		override := service.QuickLoginAccount{Grant: flags.grant}.Override()
		if saveErr := store.Save(flags.client, override); saveErr != nil {
			return fmt.Errorf("save quick login flags: %w", saveErr)
		}
		return printOverride(cmdCtx.Out, override)
	})
}

func runQuickLoginClear(cmdCtx *commandContext, args []string) error {
	flags, err := parseQuickLoginFlags("quick-login-clear", args, false)
	if err != nil {
		return err
	}
	return withOverrideStore(cmdCtx, func(store ports.OverrideStore) error {
		if err := store.Save(flags.client, domainauth.QuickLoginOverride{}); err != nil {
			return fmt.Errorf("clear quick login flags: %w", err)
		}
		return printOverride(cmdCtx.Out, domainauth.QuickLoginOverride{})
	})
}

func runQuickLoginStatus(cmdCtx *commandContext, args []string) error {
	flags, err := parseQuickLoginFlags("quick-login-status", args, false)
	if err != nil {
		return err
	}
	return withOverrideStore(cmdCtx, func(store ports.OverrideStore) error {
		return printOverride(cmdCtx.Out, store.Load(flags.client))
	})
}

func printOverride(w io.Writer, o domainauth.QuickLoginOverride) error {
	return writef(w, "isSuperAdmin: %t\nisAdmin: %t\n", o.IsSuperAdmin, o.IsAdmin)
}

// runHashPassword reads one line from stdin so the password stays out of shell history.
func runHashPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	line, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return writeln(cmdCtx.Out, string(hash))
}
