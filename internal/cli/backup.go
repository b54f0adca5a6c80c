package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderhelper/vipledger/internal/domain"
	"github.com/orderhelper/vipledger/internal/infra/github"
)

var backupFile string

func init() {
	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupPullCmd)
	backupCmd.AddCommand(backupExportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)

	backupPushCmd.Flags().StringVar(&backupFile, "file", "", "Remote file name (default backup-YYYY-MM-DD.json)")
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Push, pull or export backup documents",
}

// ─── push ───────────────────────────────────────────────────────────────────

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a backup document to the configured GitHub repository",
	RunE:  runBackupPush,
}

func runBackupPush(cmd *cobra.Command, args []string) error {
	svc, store, cfg, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := svc.BackupDocument()
	if err != nil {
		return err
	}

	client, err := github.New(os.Getenv(cfg.Backup.TokenEnv), cfg.Backup.Repo, cfg.Backup.Branch, cfg.Backup.Folder)
	if err != nil {
		return err
	}

	name := backupFile
	if name == "" {
		name = fmt.Sprintf("backup-%s.json", doc.Timestamp.Format("2006-01-02"))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if err := client.Upload(ctx, name, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Backup pushed: %s (%d transactions, %d orders)\n",
		name, len(doc.VipTransactions), len(doc.OrderHistory))
	return nil
}

// ─── pull ───────────────────────────────────────────────────────────────────

var backupPullCmd = &cobra.Command{
	Use:   "pull FILE_NAME",
	Short: "Download a backup from GitHub and restore it into the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupPull,
}

func runBackupPull(cmd *cobra.Command, args []string) error {
	svc, store, cfg, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := github.New(os.Getenv(cfg.Backup.TokenEnv), cfg.Backup.Repo, cfg.Backup.Branch, cfg.Backup.Folder)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	doc, err := client.Download(ctx, args[0])
	if err != nil {
		return err
	}
	if err := svc.Restore(doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Restored backup %s (version %s, taken %s).\n",
		args[0], doc.Version, doc.Timestamp.Format(time.RFC3339))
	return svc.Recompute()
}

// ─── export ─────────────────────────────────────────────────────────────────

var backupExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write a backup document to a local file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupExport,
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	svc, store, _, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := svc.BackupDocument()
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], payload, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Backup written to %s.\n", args[0])
	return nil
}

// ─── restore ────────────────────────────────────────────────────────────────

var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Restore the store from a local backup file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	var doc domain.Backup
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}

	svc, store, _, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := svc.Restore(doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Restored %d transaction(s), %d order(s).\n",
		len(doc.VipTransactions), len(doc.OrderHistory))
	return svc.Recompute()
}
