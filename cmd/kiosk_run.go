package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kozaktomas/clinic-kiosk/internal/kiosk"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
	"github.com/spf13/cobra"
)

var kioskRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Interactive kiosk session",
	Long: `Start an interactive kiosk session in the terminal. Each line is one action:

  show <home|registration|verification|queue-gateway>
  register <nik>;<name>;<dob>;<address>
  scan | detail | detail-close | detail-continue | nik-fallback
  lookup <nik>
  queue <poli>
  registration-close | registration-continue | alert-ok | ticket-close
  quit`,
	Args: cobra.NoArgs,
	RunE: runKioskRun,
}

func init() {
	kioskCmd.AddCommand(kioskRunCmd)
}

// parseKioskLine turns one input line into an action.
func parseKioskLine(line string) (kiosk.Action, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	a := kiosk.Action{Name: name}

	switch name {
	case kiosk.ActionShow:
		a.Page = kiosk.Page(rest)
	case kiosk.ActionRegister:
		parts := strings.Split(rest, ";")
		if len(parts) != 4 {
			return a, errors.New("usage: register <nik>;<name>;<dob>;<address>")
		}
		a.Form = patient.RegistrationForm{NIK: parts[0], Name: parts[1], DOB: parts[2], Address: parts[3]}
	case kiosk.ActionLookup:
		a.NIK = rest
	case kiosk.ActionQueue:
		a.Poli = rest
	}
	return a, nil
}

func runKioskRun(cmd *cobra.Command, args []string) error {
	ctrl, closeFn, err := kioskSession()
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Printf("Kiosk session %s\n", ctrl.Session())
	fmt.Printf("Actions: %s\n", strings.Join(ctrl.Actions(), ", "))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s]> ", ctrl.View().Page)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		a, err := parseKioskLine(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		v, err := ctrl.Dispatch(cmd.Context(), a)
		if err != nil {
			fmt.Println(err)
			continue
		}
		printKioskView(os.Stdout, v)
	}
	return scanner.Err()
}
