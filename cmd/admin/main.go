package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/config"
	"zidoyvelg-be/internal/db"
	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/order"
	"zidoyvelg-be/internal/user"

	"go.uber.org/zap"
)

// WipeConfirmation must be passed verbatim to -confirm before wipe-orders
// touches anything.
const WipeConfirmation = "WIPE-ORDERS"

var (
	errUnknownCommand = errors.New("unknown command (use promote or wipe-orders)")
	errMissingEmail   = errors.New("-email is required")
	errNotConfirmed   = fmt.Errorf("refusing to wipe orders without -confirm %s", WipeConfirmation)
	errMissingCommand = errors.New("-cmd is required")
)

type promoter interface {
	Promote(ctx context.Context, email string, role auth.Role) (*user.User, error)
}

type orderWiper interface {
	DeleteAll(ctx context.Context) (int64, error)
}

type options struct {
	cmd     string
	email   string
	role    string
	confirm string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.cmd, "cmd", "", "promote | wipe-orders")
	fs.StringVar(&o.email, "email", "", "account email (promote)")
	fs.StringVar(&o.role, "role", string(auth.RoleStaff), "role to assign (promote)")
	fs.StringVar(&o.confirm, "confirm", "", "must equal "+WipeConfirmation+" (wipe-orders)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.cmd == "" {
		return o, errMissingCommand
	}
	return o, nil
}

func main() {
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()
	log := logger.L().With(zap.String("component", "admin"))

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("invalid arguments", zap.Error(err))
	}

	cfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	database, err := db.NewDatabase(*cfg)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	users := user.NewService(user.NewRepository(database), nil)
	orders := order.NewRepository(database)

	if err := run(ctx, opts, users, orders, os.Stdout); err != nil {
		log.Fatal("admin command failed", zap.String("cmd", opts.cmd), zap.Error(err))
	}
}

func run(ctx context.Context, o options, users promoter, orders orderWiper, out io.Writer) error {
	log := logger.FromCtx(ctx).With(zap.String("component", "admin"), zap.String("cmd", o.cmd))

	switch o.cmd {
	case "promote":
		if o.email == "" {
			return errMissingEmail
		}
		role, err := auth.ParseRole(o.role)
		if err != nil {
			return err
		}
		u, err := users.Promote(ctx, o.email, role)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (id %d) is now %s\n", u.Email, u.ID, u.Role)
		return nil

	case "wipe-orders":
		if o.confirm != WipeConfirmation {
			return errNotConfirmed
		}
		n, err := orders.DeleteAll(ctx)
		if err != nil {
			return err
		}
		log.Warn("orders wiped", zap.Int64("deleted", n))
		fmt.Fprintf(out, "deleted %d orders\n", n)
		return nil

	default:
		return errUnknownCommand
	}
}
