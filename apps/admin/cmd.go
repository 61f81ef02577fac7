package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/somalabs/soma/core/account"
	"github.com/somalabs/soma/core/course"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sqlx.DB
	accountRepo account.Repository
	courseRepo  course.Repository
	validate    *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args]               - run a migration command: up, down, status, version...")
	fmt.Println("  addaccount -email EMAIL [-name NAME] - create or update an account; the password is prompted next")
	fmt.Println("  importcourses -file FILE             - import a course catalog from a JSON file")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAccountCmd := flag.NewFlagSet("addaccount", flag.ExitOnError)
	addAccountEmail := addAccountCmd.String("email", "", "The account's email. The password will be prompted next.")
	addAccountName := addAccountCmd.String("name", "", "The account's display name (optional).")

	importCoursesCmd := flag.NewFlagSet("importcourses", flag.ExitOnError)
	importCoursesFile := importCoursesCmd.String("file", "", "Path to a JSON course catalog file.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addaccount":
		if err := addAccountCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAccountEmail == "" {
			addAccountCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAccountCmd.Usage()
			return errHelp
		}
		return cli.addAccount(*addAccountEmail, *addAccountName, string(pwd))
	case "importcourses":
		if err := importCoursesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importCoursesFile == "" {
			importCoursesCmd.Usage()
			return errHelp
		}
		return cli.importCourses(*importCoursesFile)
	default:
		cli.printUsage()
		return errHelp
	}
}
