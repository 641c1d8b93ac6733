package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kozaktomas/clinic-kiosk/internal/admin"
	"github.com/spf13/cobra"
)

var adminShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive patient table",
	Long: `Open the patient table interactively. Commands:

  sort <nik|name|dob|address>   toggle sort column
  next | prev | page <n>        paginate
  rows <n>                      rows per page
  edit <nik> [field=value ...]  edit nik, dob or address
  delete <nik>                  delete after confirmation
  reload                        fetch the table again
  quit`,
	Args: cobra.NoArgs,
	RunE: runAdminShell,
}

func init() {
	adminCmd.AddCommand(adminShellCmd)
}

func runAdminShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctrl, client, err := adminSession(ctx, promptConfirm)
	if err != nil {
		return err
	}
	defer client.Logout(ctx)

	show := func(v admin.View) {
		if err := admin.Render(os.Stdout, v); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	show(ctrl.View())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("admin> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "sort":
			if len(fields) < 2 {
				fmt.Println("usage: sort <nik|name|dob|address>")
				continue
			}
			key, err := admin.ParseSortKey(fields[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			show(ctrl.ToggleSort(key))
		case "next":
			show(ctrl.NextPage())
		case "prev":
			show(ctrl.PrevPage())
		case "page", "rows":
			if len(fields) < 2 {
				fmt.Printf("usage: %s <n>\n", fields[0])
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("not a number:", fields[1])
				continue
			}
			if fields[0] == "page" {
				show(ctrl.GoToPage(n))
				continue
			}
			if err := ctrl.SetPageSize(n); err != nil {
				fmt.Println(err)
				continue
			}
			show(ctrl.View())
		case "edit":
			if len(fields) < 2 {
				fmt.Println("usage: edit <nik> [field=value ...]")
				continue
			}
			form, err := ctrl.OpenEdit(fields[1])
			if err != nil {
				show(ctrl.View())
				continue
			}
			fmt.Printf("Nama: %s (tidak dapat diubah)\n", form.Name)
			edited, err := editFromArgs(*form, fields[2:])
			if err != nil {
				fmt.Println(err)
				ctrl.CancelEdit()
				continue
			}
			_ = ctrl.SubmitEdit(ctx, edited)
			ctrl.CancelEdit()
			show(ctrl.View())
		case "delete":
			if len(fields) < 2 {
				fmt.Println("usage: delete <nik>")
				continue
			}
			_, _ = ctrl.Delete(ctx, fields[1])
			show(ctrl.View())
		case "reload":
			_ = ctrl.Load(ctx)
			show(ctrl.View())
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
	return scanner.Err()
}
