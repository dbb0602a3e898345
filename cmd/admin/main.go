// Command admin manages administrator accounts directly in the database.
//
//	admin create [-email E] [-name N] [-password P]
//	admin show
//
// create falls back to CREATE_ADMIN_EMAIL, CREATE_ADMIN_FULL_NAME and
// CREATE_ADMIN_PASSWORD, then to an interactive prompt.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iliyamo/publicvoice/internal/config"
	"github.com/iliyamo/publicvoice/internal/credential"
	"github.com/iliyamo/publicvoice/internal/database"
	"github.com/iliyamo/publicvoice/internal/model"
	"github.com/iliyamo/publicvoice/internal/repository"
	"github.com/iliyamo/publicvoice/internal/validate"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: admin <command> [flags]

commands:
  create   create an administrator account
  show     list administrator accounts
`)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		fail(err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		fail(err)
	}
	users := repository.NewUserRepo(db)

	switch flag.Arg(0) {
	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		email := fs.String("email", os.Getenv("CREATE_ADMIN_EMAIL"), "admin email")
		name := fs.String("name", os.Getenv("CREATE_ADMIN_FULL_NAME"), "full name")
		password := fs.String("password", os.Getenv("CREATE_ADMIN_PASSWORD"), "password")
		_ = fs.Parse(flag.Args()[1:])

		in := bufio.NewReader(os.Stdin)
		if *email == "" {
			*email = prompt(in, "Admin email: ")
		}
		if *name == "" {
			*name = prompt(in, "Full name: ")
		}
		if *password == "" {
			*password = prompt(in, "Password (min 8 chars, 1 letter, 1 digit): ")
			if prompt(in, "Confirm password: ") != *password {
				fail(errors.New("passwords do not match"))
			}
		}
		creds, err := credential.New(credential.Options{
			Secret:     cfg.JWTSecret,
			Algorithm:  cfg.JWTAlgorithm,
			BcryptCost: cfg.BcryptCost,
		})
		if err != nil {
			fail(err)
		}
		u, err := createAdmin(ctx, users, creds, adminInput{Email: *email, FullName: *name, Password: *password})
		if err != nil {
			fail(err)
		}
		fmt.Printf("Admin created: id=%d, email=%s\n", u.ID, u.Email)
	case "show":
		if err := showAdmins(ctx, users, os.Stdout); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

type adminInput struct {
	Email    string
	FullName string
	Password string
}

type passwordHasher interface {
	HashPassword(plain string) (string, error)
}

// createAdmin validates in and stores a new account with the admin role.
// A blank name becomes "Admin".
func createAdmin(ctx context.Context, users repository.UserStore, hasher passwordHasher, in adminInput) (*model.User, error) {
	email, err := validate.Email(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validate.Password(in.Password); err != nil {
		return nil, err
	}
	name := validate.Text(in.FullName, 255)
	if name == "" {
		name = "Admin"
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user with email %s already exists", email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := hasher.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{FullName: name, Email: email, PasswordHash: hash, Role: model.RoleAdmin}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, fmt.Errorf("user with email %s already exists", email)
		}
		return nil, err
	}
	return u, nil
}

// showAdmins prints every admin account.  It fails when none exists so
// scripts can detect an unprovisioned database.
func showAdmins(ctx context.Context, users repository.UserStore, w io.Writer) error {
	admins, err := users.List(ctx, repository.UserQuery{Role: model.RoleAdmin, Limit: 1000})
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		return errors.New("no admin account found; create one with: admin create")
	}
	fmt.Fprintln(w, "Admin account(s):")
	fmt.Fprintln(w)
	for _, u := range admins {
		fmt.Fprintf(w, "  ID:     %d\n", u.ID)
		fmt.Fprintf(w, "  Email:  %s\n", u.Email)
		fmt.Fprintf(w, "  Name:   %s\n", u.FullName)
		fmt.Fprintln(w)
	}
	return nil
}
