package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kozaktomas/clinic-kiosk/internal/kiosk"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
	"github.com/spf13/cobra"
)

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Run kiosk flows from the terminal",
	Long: `Run the patient kiosk flows against the clinic service.

Frames come from the configured camera (CAMERA_SOURCE): a directory of still
images (CAMERA_DIR) or an IP camera snapshot URL (CAMERA_SNAPSHOT_URL).`,
}

var kioskRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new patient with captured face frames",
	Example: `  clinic-kiosk kiosk register --nik 3201234567890123 --name "Budi Santoso" \
    --dob 1990-10-17 --address "Jl. Merdeka 1"`,
	Args: cobra.NoArgs,
	RunE: runKioskRegister,
}

var kioskVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recognize the patient in front of the camera",
	Args:  cobra.NoArgs,
	RunE:  runKioskVerify,
}

var kioskLookupCmd = &cobra.Command{
	Use:   "lookup <nik>",
	Short: "Look a patient up by NIK",
	Args:  cobra.ExactArgs(1),
	RunE:  runKioskLookup,
}

var kioskQueueCmd = &cobra.Command{
	Use:   "queue <poli>",
	Short: "Identify the patient and take a queue number",
	Long: `Identify the patient, by face or with --nik, and take a queue number
for the given department.`,
	Example: `  clinic-kiosk kiosk queue "Poli Umum"
  clinic-kiosk kiosk queue IGD --nik 3201234567890123`,
	Args: cobra.ExactArgs(1),
	RunE: runKioskQueue,
}

func init() {
	rootCmd.AddCommand(kioskCmd)
	kioskCmd.AddCommand(kioskRegisterCmd, kioskVerifyCmd, kioskLookupCmd, kioskQueueCmd)

	kioskRegisterCmd.Flags().String("nik", "", "16 digit NIK")
	kioskRegisterCmd.Flags().String("name", "", "Full name")
	kioskRegisterCmd.Flags().String("dob", "", "Date of birth (YYYY-MM-DD)")
	kioskRegisterCmd.Flags().String("address", "", "Address")
	kioskRegisterCmd.Flags().Bool("queue", false, "Continue to the queue gateway after registering")

	kioskQueueCmd.Flags().String("nik", "", "Identify by NIK instead of by face")
}

// kioskSession wires a controller for a one-shot command.
func kioskSession() (*kiosk.Controller, func(), error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := newClinicClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	ctrl := newKioskController(cfg, client, log)
	detach := attachProgressBar(ctrl)
	return ctrl, func() {
		detach()
		if err := ctrl.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close camera")
		}
	}, nil
}

// dispatchAll runs actions in order and stops at the first one that leaves
// an alert other than the expected success message.
func dispatchAll(ctx context.Context, ctrl *kiosk.Controller, actions ...kiosk.Action) (kiosk.View, error) {
	var v kiosk.View
	for _, a := range actions {
		var err error
		v, err = ctrl.Dispatch(ctx, a)
		if err != nil {
			return v, err
		}
		if v.Alert != "" && v.Alert != "Data pasien ditemukan." {
			return v, errors.New(v.Alert)
		}
	}
	return v, nil
}

func printKioskView(w io.Writer, v kiosk.View) {
	switch v.Page {
	case kiosk.PageRegistration:
		fmt.Fprintf(w, "Registrasi: %s\n", v.Registration.Status)
	case kiosk.PageVerification:
		fmt.Fprintf(w, "Verifikasi: %s\n", v.Verification.Status)
	case kiosk.PageGateway:
		if v.Gateway != nil {
			fmt.Fprintf(w, "Pasien: %s, %s, %s\n", v.Gateway.Name, v.Gateway.Age, v.Gateway.Address)
		}
	}
	if v.Verification.ResultVisible {
		for _, l := range v.Verification.Result {
			fmt.Fprintf(w, "  %-18s %s\n", l.Label+":", l.Value)
		}
	}
	for _, l := range v.Detail {
		fmt.Fprintf(w, "  %-18s %s\n", l.Label+":", l.Value)
	}
	if v.RegistrationSuccess {
		fmt.Fprintln(w, "Registrasi berhasil.")
	}
	if v.Ticket != nil {
		fmt.Fprintf(w, "Poli: %s\nNomor antrian: %d\n", v.Ticket.Poli, v.Ticket.Nomor)
	}
	if v.Alert != "" {
		fmt.Fprintf(w, "! %s\n", v.Alert)
	}
}

func runKioskRegister(cmd *cobra.Command, args []string) error {
	ctrl, closeFn, err := kioskSession()
	if err != nil {
		return err
	}
	defer closeFn()

	form := patient.RegistrationForm{
		NIK:     mustGetString(cmd, "nik"),
		Name:    mustGetString(cmd, "name"),
		DOB:     mustGetString(cmd, "dob"),
		Address: mustGetString(cmd, "address"),
	}
	actions := []kiosk.Action{
		{Name: kiosk.ActionShow, Page: kiosk.PageRegistration},
		{Name: kiosk.ActionRegister, Form: form},
	}
	if mustGetBool(cmd, "queue") {
		actions = append(actions, kiosk.Action{Name: kiosk.ActionRegistrationContinue})
	}

	v, err := dispatchAll(cmd.Context(), ctrl, actions...)
	printKioskView(os.Stdout, v)
	return err
}

func runKioskVerify(cmd *cobra.Command, args []string) error {
	ctrl, closeFn, err := kioskSession()
	if err != nil {
		return err
	}
	defer closeFn()

	v, err := dispatchAll(cmd.Context(), ctrl,
		kiosk.Action{Name: kiosk.ActionShow, Page: kiosk.PageVerification},
		kiosk.Action{Name: kiosk.ActionScan},
	)
	printKioskView(os.Stdout, v)
	return err
}

func runKioskLookup(cmd *cobra.Command, args []string) error {
	ctrl, closeFn, err := kioskSession()
	if err != nil {
		return err
	}
	defer closeFn()

	v, err := dispatchAll(cmd.Context(), ctrl,
		kiosk.Action{Name: kiosk.ActionNIKFallback},
		kiosk.Action{Name: kiosk.ActionLookup, NIK: args[0]},
	)
	printKioskView(os.Stdout, v)
	return err
}

func runKioskQueue(cmd *cobra.Command, args []string) error {
	ctrl, closeFn, err := kioskSession()
	if err != nil {
		return err
	}
	defer closeFn()

	identify := []kiosk.Action{
		{Name: kiosk.ActionShow, Page: kiosk.PageVerification},
		{Name: kiosk.ActionScan},
	}
	if nik := mustGetString(cmd, "nik"); nik != "" {
		identify = []kiosk.Action{
			{Name: kiosk.ActionNIKFallback},
			{Name: kiosk.ActionLookup, NIK: nik},
		}
	}
	actions := append(identify,
		kiosk.Action{Name: kiosk.ActionDetailContinue},
		kiosk.Action{Name: kiosk.ActionQueue, Poli: args[0]},
	)

	v, err := dispatchAll(cmd.Context(), ctrl, actions...)
	printKioskView(os.Stdout, v)
	return err
}
