package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kozaktomas/clinic-kiosk/internal/admin"
	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/patient"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage patient records",
	Long: `Browse, edit and delete patient records in the clinic service.

Requires CLINIC_ADMIN_USERNAME and CLINIC_ADMIN_PASSWORD.`,
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients as a sorted, paginated table",
	Example: `  clinic-kiosk admin list
  clinic-kiosk admin list --sort name --desc --page 2 --rows 25`,
	Args: cobra.NoArgs,
	RunE: runAdminList,
}

var adminEditCmd = &cobra.Command{
	Use:   "edit <nik>",
	Short: "Edit NIK, date of birth or address of a patient",
	Long: `Edit a patient. Only the flags given are changed. The name cannot be edited.`,
	Example: `  clinic-kiosk admin edit 3201234567890123 --address "Jl. Baru 2"`,
	Args:    cobra.ExactArgs(1),
	RunE:    runAdminEdit,
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete <nik>",
	Short: "Delete a patient",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminDelete,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminListCmd, adminEditCmd, adminDeleteCmd)

	adminListCmd.Flags().String("sort", string(admin.DefaultSortKey), "Sort column: nik, name, dob, address")
	adminListCmd.Flags().Bool("desc", false, "Sort descending")
	adminListCmd.Flags().Int("page", 1, "Page to show")
	adminListCmd.Flags().Int("rows", admin.DefaultPageSize, "Rows per page")

	adminEditCmd.Flags().String("nik", "", "New NIK")
	adminEditCmd.Flags().String("dob", "", "New date of birth")
	adminEditCmd.Flags().String("address", "", "New address")

	adminDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// promptConfirm asks a yes/no question on stdin.
func promptConfirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes" || answer == "ya"
}

// adminSession logs in and loads the table.
func adminSession(ctx context.Context, confirm admin.Confirmer) (*admin.Controller, *clinic.Client, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := newAdminClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	ctrl := admin.NewController(client, confirm, log)
	if err := ctrl.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ctrl.View().Alert, err)
	}
	return ctrl, client, nil
}

func runAdminList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key, err := admin.ParseSortKey(mustGetString(cmd, "sort"))
	if err != nil {
		return err
	}

	ctrl, client, err := adminSession(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Logout(ctx)

	if key != admin.DefaultSortKey {
		ctrl.ToggleSort(key)
	}
	if mustGetBool(cmd, "desc") {
		ctrl.ToggleSort(key)
	}
	if err := ctrl.SetPageSize(mustGetInt(cmd, "rows")); err != nil {
		return err
	}
	return admin.Render(os.Stdout, ctrl.GoToPage(mustGetInt(cmd, "page")))
}

func runAdminEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctrl, client, err := adminSession(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Logout(ctx)

	form, err := ctrl.OpenEdit(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", ctrl.View().Alert, err)
	}
	if v := mustGetString(cmd, "nik"); v != "" {
		form.NIK = v
	}
	if v := mustGetString(cmd, "dob"); v != "" {
		form.DOB = v
	}
	if v := mustGetString(cmd, "address"); v != "" {
		form.Address = v
	}

	if err := ctrl.SubmitEdit(ctx, *form); err != nil {
		return fmt.Errorf("%s: %w", ctrl.View().Alert, err)
	}
	fmt.Println(ctrl.View().Alert)
	return nil
}

func runAdminDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	confirm := promptConfirm
	if mustGetBool(cmd, "yes") {
		confirm = func(string) bool { return true }
	}

	ctrl, client, err := adminSession(ctx, confirm)
	if err != nil {
		return err
	}
	defer client.Logout(ctx)

	if _, err := ctrl.OpenEdit(args[0]); err != nil {
		return fmt.Errorf("%s: %w", ctrl.View().Alert, err)
	}
	ctrl.CancelEdit()

	deleted, err := ctrl.Delete(ctx, args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", ctrl.View().Alert, err)
	}
	if !deleted {
		fmt.Println("Dibatalkan.")
		return nil
	}
	fmt.Printf("Pasien %s dihapus. %s\n", args[0], ctrl.View().PageInfo)
	return nil
}

// editFromArgs applies field=value arguments to an open form. A token
// without "=" continues the previous value, so addresses may contain spaces.
func editFromArgs(form patient.EditForm, args []string) (patient.EditForm, error) {
	var field *string
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			if field == nil {
				return form, fmt.Errorf("expected field=value, got %q", arg)
			}
			*field += " " + arg
			continue
		}
		switch strings.ToLower(k) {
		case "nik":
			field = &form.NIK
		case "dob":
			field = &form.DOB
		case "address":
			field = &form.Address
		default:
			return form, fmt.Errorf("field %q cannot be edited", k)
		}
		*field = v
	}
	return form, nil
}
