package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/data"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

type roleOptions struct {
	UserID string
	Role   string
	Limit  int
	Offset int
}

func parseRoleFlags(name string, args []string, wantRole bool) (roleOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts roleOptions
	fs.StringVar(&opts.UserID, "user", "", "User ID (the identity provider subject)")
	if wantRole {
		fs.StringVar(&opts.Role, "role", "", "Role to assign: user, moderator or admin")
	}
	if err := fs.Parse(args); err != nil {
		return roleOptions{}, err
	}

	opts.UserID = strings.TrimSpace(opts.UserID)
	if opts.UserID == "" {
		return roleOptions{}, errors.New("--user is required")
	}
	if wantRole && strings.TrimSpace(opts.Role) == "" {
		return roleOptions{}, errors.New("--role is required")
	}
	return opts, nil
}

func parseListRolesFlags(args []string) (roleOptions, error) {
	fs := flag.NewFlagSet("list-roles", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts roleOptions
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum rows to print")
	fs.IntVar(&opts.Offset, "offset", 0, "Rows to skip")
	if err := fs.Parse(args); err != nil {
		return roleOptions{}, err
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return roleOptions{}, errors.New("--limit and --offset must not be negative")
	}
	return opts, nil
}

// withRoleService wires the role service over Postgres. When Redis is
// reachable the role cache is attached so changes invalidate cached lookups
// served by running API instances.
func withRoleService(cmdCtx *commandContext, fn func(ctx context.Context, svc *service.RoleService) error) error {
	return withDatabase(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		opts := core.RoleCacheServiceOptions{
			Roles:  data.NewRoleRepo(db),
			Config: core.RoleCacheConfig{TTL: cmdCtx.Config.Cache.RoleTTL},
			Logger: cmdCtx.Logger,
		}
		client, err := maybeConnectRedis(cmdCtx.Logger, &cmdCtx.Config.Redis)
		switch {
		case err == nil:
			defer closeRedis(cmdCtx.Logger, client)
			opts.Cache = data.NewRedisCacheRepo(client, cmdCtx.Config.Cache.KeyPrefix)
		case errors.Is(err, errRedisNotConfigured):
		default:
			cmdCtx.Logger.Warn("redis unavailable; cached roles expire on their own", "error", err)
		}

		roles := core.NewRoleCacheService(opts)
		return fn(ctx, service.NewRoleService(service.RoleServiceOptions{Assigner: roles}))
	})
}

func runGrantRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoleFlags("grant-role", args, true)
	if err != nil {
		return err
	}
	return withRoleService(cmdCtx, func(ctx context.Context, svc *service.RoleService) error {
		return grantRole(ctx, cmdCtx.Out, svc, opts)
	})
}

func runRevokeRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoleFlags("revoke-role", args, false)
	if err != nil {
		return err
	}
	return withRoleService(cmdCtx, func(ctx context.Context, svc *service.RoleService) error {
		return revokeRole(ctx, cmdCtx.Out, svc, opts)
	})
}

func runListRoles(cmdCtx *commandContext, args []string) error {
	opts, err := parseListRolesFlags(args)
	if err != nil {
		return err
	}
	return withRoleService(cmdCtx, func(ctx context.Context, svc *service.RoleService) error {
		assignments, listErr := svc.List(ctx, opts.Limit, opts.Offset)
		if listErr != nil {
			return fmt.Errorf("list roles: %w", listErr)
		}
		return printRoleAssignments(cmdCtx.Out, assignments)
	})
}

func grantRole(ctx context.Context, w io.Writer, svc *service.RoleService, opts roleOptions) error {
	out, err := svc.Assign(ctx, opts.UserID, opts.Role)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return writef(w, "Granted %s to %s.\n", out.Role, out.UserID)
}

func revokeRole(ctx context.Context, w io.Writer, svc *service.RoleService, opts roleOptions) error {
	if err := svc.Revoke(ctx, opts.UserID); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return writef(w, "Revoked role of %s.\n", opts.UserID)
}

func printRoleAssignments(w io.Writer, assignments []ports.RoleAssignment) error {
	if len(assignments) == 0 {
		return writeln(w, "No role assignments.")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "USER ID\tROLE\tUPDATED"); err != nil {
		return err
	}
	for _, a := range assignments {
		if err := writef(tw, "%s\t%s\t%s\n", a.UserID, a.Role, a.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tw.Flush()
}
