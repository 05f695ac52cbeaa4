package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hr-ledger/internal/archive"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export, restore and list snapshot archives",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full dataset as a snapshot archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if encrypt && a.cfg.Archive.AgeRecipient == "" {
			return fmt.Errorf("--encrypt requires archive.age_recipient")
		}

		ctx := cmd.Context()
		snap, err := a.svc.Backup.Export(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}

		payload := raw
		if encrypt {
			var sealed bytes.Buffer
			if err := archive.Encrypt(&sealed, bytes.NewReader(raw), a.cfg.Archive.AgeRecipient); err != nil {
				return err
			}
			payload = sealed.Bytes()
		}

		if output != "" {
			if err := os.WriteFile(output, payload, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Printf("Wrote %d rows to %s\n", snap.RowCount(), output)
			return nil
		}

		store, err := archive.NewStoreFromConfig(ctx, &a.cfg.Archive)
		if err != nil {
			return err
		}
		name := archive.Name(time.Now(), encrypt)
		if err := store.Put(ctx, name, bytes.NewReader(payload)); err != nil {
			return err
		}

		a.logger.Info("snapshot archived",
			zap.String("archive", name),
			zap.Int("rows", snap.RowCount()),
			zap.Bool("encrypted", encrypt),
		)
		fmt.Printf("Archived %d rows as %s\n", snap.RowCount(), name)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [archive]",
	Short: "Replace the dataset with a snapshot archive",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		yes, _ := cmd.Flags().GetBool("yes")
		if (file == "") == (len(args) == 0) {
			return fmt.Errorf("give either an archive name or --file")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var (
			name    string
			payload []byte
		)
		if file != "" {
			name = file
			payload, err = os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
		} else {
			name = args[0]
			store, err := archive.NewStoreFromConfig(ctx, &a.cfg.Archive)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := store.Get(ctx, name, &buf); err != nil {
				return err
			}
			payload = buf.Bytes()
		}

		if archive.IsEncrypted(name) {
			if a.cfg.Archive.AgeIdentity == "" {
				return fmt.Errorf("%s is encrypted; set archive.age_identity_path", name)
			}
			var opened bytes.Buffer
			if err := archive.Decrypt(&opened, bytes.NewReader(payload), a.cfg.Archive.AgeIdentity); err != nil {
				return err
			}
			payload = opened.Bytes()
		}

		if !yes && !confirm(fmt.Sprintf("Restoring %s replaces ALL ledger data. Continue?", name)) {
			fmt.Println("Aborted")
			return nil
		}

		result, err := a.svc.Backup.RestoreJSON(ctx, payload)
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d rows across %d tables\n", result.Rows, result.Tables)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored archives, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		store, err := archive.NewStoreFromConfig(cmd.Context(), &a.cfg.Archive)
		if err != nil {
			return err
		}
		list, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No archives")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tCREATED")
		for _, info := range list {
			fmt.Fprintf(w, "%s\t%d\t%s\n", info.Name, info.Size, info.ModTime.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
