package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"lms/config"
	"lms/database"
	"lms/models"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	readPasswordFunc = term.ReadPassword // replaced in tests

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db  *gorm.DB
	out io.Writer
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	out := cli.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	cli.printf("  adduser -email EMAIL -name NAME [-role ADMIN|TEACHER|STUDENT] - create or update a user, password prompted\n")
	cli.printf("  resetpassword -email EMAIL - reset a user's password, password prompted\n")
	cli.printf("  migrate - run the schema migrations\n")
}

func (cli *commandLine) readPassword() (string, error) {
	cli.printf("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.printf("\n")
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's display name.")
	addUserRole := addUserCmd.String("role", models.RoleAdmin, "One of ADMIN, TEACHER or STUDENT.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" || !models.ValidRole(*addUserRole) {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if len(pwd) < 8 {
			cli.printf("password must be at least 8 characters\n")
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, pwd, *addUserRole)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if len(pwd) < 8 {
			cli.printf("password must be at least 8 characters\n")
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "migrate":
		if err := database.RunMigrations(cli.db); err != nil {
			return err
		}
		cli.printf("migrations applied\n")
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func hashPassword(pwd string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pwd), config.AppConfig.SaltRound)
	return string(hashed), err
}

// addUser creates the account, or updates the role, name and password of an existing one.
func (cli *commandLine) addUser(name, email, pwd, role string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hashed, err := hashPassword(pwd)
	if err != nil {
		return err
	}

	var user models.User
	err = cli.db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Name: strings.TrimSpace(name), Email: email, Password: hashed, Role: role, IsActive: true}
		if err := cli.db.Create(&user).Error; err != nil {
			return err
		}
		cli.printf("created %s %s\n", role, email)
		return nil
	case err != nil:
		return err
	}

	if err := cli.db.Model(&user).Updates(map[string]interface{}{
		"name":                  strings.TrimSpace(name),
		"password":              hashed,
		"role":                  role,
		"is_active":             true,
		"is_deleted":            false,
		"failed_login_attempts": 0,
		"blocked_until":         nil,
	}).Error; err != nil {
		return err
	}
	cli.printf("updated %s %s\n", role, email)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := cli.db.Where("email = ? AND is_deleted = ?", email, false).First(&user).Error; err != nil {
		return err
	}
	hashed, err := hashPassword(pwd)
	if err != nil {
		return err
	}
	if err := cli.db.Model(&user).Updates(map[string]interface{}{
		"password":              hashed,
		"failed_login_attempts": 0,
		"blocked_until":         nil,
	}).Error; err != nil {
		return err
	}
	cli.printf("password reset for %s\n", email)
	return nil
}
