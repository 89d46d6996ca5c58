package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"paiid/internal/app"
	"paiid/internal/config"
	"paiid/internal/gallery"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a PaiidApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Generate", "Page").
func newApp(operation string) (*app.PaiidApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewPaiidApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a fresh app and marks the operation failed when fn
// returns an error.
func withApp(operation string, fn func(a *app.PaiidApp) error) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(a); err != nil {
		a.Fail()
		return err
	}
	return nil
}

// readPassphrase prompts on stderr and reads a passphrase without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// entryPath is the repo-relative form of an entry accepted by delete,
// archive and restore.
func entryPath(e *gallery.Entry) string {
	return path.Join(e.Date, e.EntryName())
}

func printEntry(e *gallery.Entry) {
	fmt.Printf("%s %s  %-40q  %d image(s)\n", e.Date, e.Time, e.Prompt, e.Num())
	fmt.Printf("    %s\n", entryPath(e))
}

func requireRepo(a *app.PaiidApp) error {
	if a.CurrentRepo() == "" {
		return fmt.Errorf("no repo selected: run 'paiid repo switch NAME' first")
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:          "paiid",
	Short:        "AI image gallery",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Repos Root: %s\n", cfg.ReposRoot)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Repos Root:   %s\n", cfg.ReposRoot)
		fmt.Printf("Default Repo: %s\n", cfg.DefaultRepo)
		fmt.Printf("Page Size:    %d\n", cfg.PageSize)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Journal:      %s\n", cfg.Journal.Type)
		fmt.Printf("Archive:      %s\n", cfg.Archive.Type)
		fmt.Printf("Encryption:   %s\n", cfg.Encryption.Type)
		return nil
	},
}

// repo command
var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage repos",
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repos",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("ListRepos", func(a *app.PaiidApp) error {
			repos, err := a.ListRepos()
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				fmt.Println("No repos.")
				return nil
			}
			for _, name := range repos {
				marker := " "
				if name == a.CurrentRepo() {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
			return nil
		})
	},
}

var repoSwitchCmd = &cobra.Command{
	Use:   "switch NAME",
	Short: "Select the repo used by later commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		err := withApp("SwitchRepo", func(a *app.PaiidApp) error {
			return a.SwitchRepo(name)
		})
		if err != nil {
			return err
		}

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		if err := config.Update(defaults["config_path"], func(c *config.Config) { c.DefaultRepo = name }); err != nil {
			return err
		}

		fmt.Printf("Switched to repo %s\n", name)
		return nil
	},
}

// generate command
var generateCmd = &cobra.Command{
	Use:   "generate PROMPT",
	Short: "Store images for a prompt as a new entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		images, _ := cmd.Flags().GetStringSlice("image")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return withApp("Generate", func(a *app.PaiidApp) error {
			if err := requireRepo(a); err != nil {
				return err
			}
			entry, err := a.Generate(ctx, args[0], images)
			if err != nil {
				return fmt.Errorf("generating: %w", err)
			}
			fmt.Printf("Created entry with %d image(s)\n", entry.Num())
			printEntry(entry)
			return nil
		})
	},
}

// page command
var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "List entries one page at a time, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		token, _ := cmd.Flags().GetString("token")
		backward, _ := cmd.Flags().GetBool("backward")

		direction := gallery.Forward.String()
		if backward {
			direction = gallery.Backward.String()
		}

		return withApp("Page", func(a *app.PaiidApp) error {
			if err := requireRepo(a); err != nil {
				return err
			}
			res, err := a.Page(count, token, direction)
			if err != nil {
				return err
			}

			if len(res.Results) == 0 && !res.HasError() {
				fmt.Println("No entries.")
			}
			for _, e := range res.Results {
				printEntry(e)
			}
			if res.NextToken != nil {
				token, err := res.NextToken.Encode()
				if err != nil {
					return err
				}
				fmt.Printf("\nNext token: %s\n", token)
			}
			if res.HasError() {
				return fmt.Errorf("page incomplete: %s", res.ErrorMessage)
			}
			return nil
		})
	},
}

// latest command
var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the newest entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Latest", func(a *app.PaiidApp) error {
			if err := requireRepo(a); err != nil {
				return err
			}
			entry, ok := a.Latest()
			if !ok {
				fmt.Println("No entries.")
				return nil
			}
			printEntry(entry)
			for _, p := range entry.ImagePaths {
				fmt.Printf("    %s\n", p)
			}
			return nil
		})
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ENTRY",
	Short: "Delete an entry and its images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Delete", func(a *app.PaiidApp) error {
			n, err := a.Delete(args[0])
			if err != nil {
				return fmt.Errorf("deleting: %w", err)
			}
			fmt.Printf("Removed %d image(s)\n", n)
			return nil
		})
	},
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive ENTRY",
	Short: "Copy an entry's images to the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Archive", func(a *app.PaiidApp) error {
			n, err := a.Archive(args[0])
			if err != nil {
				return fmt.Errorf("archiving: %w", err)
			}
			fmt.Printf("Archived %d image(s)\n", n)
			return nil
		})
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore ENTRY",
	Short: "Restore an entry's images from the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("Restore", func(a *app.PaiidApp) error {
			encrypted, err := a.ArchiveEncrypted(args[0])
			if err != nil {
				return fmt.Errorf("restoring: %w", err)
			}

			var passphrase string
			if encrypted {
				if passphrase, err = readPassphrase("Passphrase: "); err != nil {
					return err
				}
			}

			n, err := a.Restore(args[0], passphrase)
			if err != nil {
				return fmt.Errorf("restoring: %w", err)
			}
			fmt.Printf("Restored %d image(s)\n", n)
			return nil
		})
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent gallery activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp("History", func(a *app.PaiidApp) error {
			events, err := a.History(limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No activity recorded.")
				return nil
			}

			for _, ev := range events {
				target := ev.Ref.Repo
				if ev.Ref.Date != "" {
					target = ev.Ref.String()
				}
				fmt.Printf("%s  %-12s  %s  %s\n",
					ev.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					ev.Kind,
					target,
					ev.Detail,
				)
			}
			return nil
		})
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage archive encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the archive key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("SetupKeys", func(a *app.PaiidApp) error {
			passphrase, err := readPassphrase("New passphrase: ")
			if err != nil {
				return err
			}
			confirm, err := readPassphrase("Repeat passphrase: ")
			if err != nil {
				return err
			}
			if passphrase != confirm {
				return fmt.Errorf("passphrases do not match")
			}

			if err := a.SetupKeys(passphrase); err != nil {
				return fmt.Errorf("setting up keys: %w", err)
			}
			fmt.Println("Archive keys created.")
			return nil
		})
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// repo subcommands
	repoCmd.AddCommand(repoListCmd)
	repoCmd.AddCommand(repoSwitchCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringSliceP("image", "i", nil, "Image file to store (repeatable)")
	generateCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(pageCmd)
	pageCmd.Flags().IntP("count", "n", 0, "Entries per page (default: page_size from config)")
	pageCmd.Flags().StringP("token", "t", "", "Token printed by the previous page")
	pageCmd.Flags().BoolP("backward", "b", false, "Page toward newer entries")
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of events to show")
}
