// cardctl is the operator tool for the credential layer: derive DUID
// indexes, encrypt and decrypt field values, and run card programming
// flows. Without a hardware bridge the card commands run against the
// null adapter, which exercises the full orchestration as a dry run.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cardgate/internal/duid"
	"cardgate/internal/fieldcrypt"
	"cardgate/internal/nfccard"
	"cardgate/internal/platform/config"
	"cardgate/internal/platform/logger"
)

var (
	successText = color.New(color.FgGreen)
	warnText    = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorText.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cardctl",
		Short:         "Identity and credential crypto operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDUIDCmd(), newFieldCmd(), newCardCmd())
	return root
}

func newDUIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duid <npub|duid-public>",
		Short: "Derive the server-side DUID index for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			gen, err := duid.NewGenerator(cfg.Secrets.DUIDServerSecret, logger.New())
			if err != nil {
				return err
			}

			input := args[0]
			var index string
			if strings.HasPrefix(input, "npub1") {
				index, err = gen.GenerateIndexFromNpub(input)
			} else {
				index, err = gen.GenerateIndex(input)
			}
			if err != nil {
				return err
			}
			fmt.Println(index)
			return nil
		},
	}
	return cmd
}

func newFieldCmd() *cobra.Command {
	var salt string

	cmd := &cobra.Command{
		Use:   "field",
		Short: "Encrypt and decrypt individual field values",
	}
	cmd.PersistentFlags().StringVar(&salt, "salt", "", "per-user salt (required)")

	encrypt := &cobra.Command{
		Use:   "encrypt <plaintext>",
		Short: "Seal a value into a noble-v2 envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			provider := newProvider()
			sealed, err := provider.EncryptSecretSimple(args[0], salt)
			if err != nil {
				return err
			}
			fmt.Println(sealed)
			return nil
		},
	}

	decrypt := &cobra.Command{
		Use:   "decrypt <envelope>",
		Short: "Open a noble-v2 or legacy n2enc envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			provider := newProvider()
			plain, err := provider.DecryptSecretSimple(args[0], salt)
			if err != nil {
				return err
			}
			fmt.Println(plain)
			return nil
		},
	}

	cmd.AddCommand(encrypt, decrypt)
	return cmd
}

func newProvider() *fieldcrypt.Provider {
	cfg := config.FromEnv()
	return fieldcrypt.New(fieldcrypt.Config{
		MasterSecret: cfg.Secrets.PrivacyMasterKey,
		Iterations:   cfg.KDFIterations,
	})
}

func newCardCmd() *cobra.Command {
	card := &cobra.Command{
		Use:   "card",
		Short: "NFC card programming flows (dry run without hardware)",
	}

	var req nfccard.ProgramRequest
	var functions []string

	program := &cobra.Command{
		Use:   "program",
		Short: "Run the multi-function programming flow",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			manager := nfccard.NewManager(nfccard.ManagerConfig{
				File01HMACKey: cfg.Secrets.File01HMACKey,
				Logger:        logger.NewWithPrefix("nfccard: "),
			})

			for _, fn := range functions {
				req.Functions = append(req.Functions, nfccard.Function(fn))
			}

			result := manager.ProgramCard(context.Background(), req)
			if !result.Success {
				return fmt.Errorf("programming failed: %s", result.ErrorCode)
			}
			successText.Printf("✓ programmed functions: %v\n", result.ProgrammedFunctions)
			for _, warning := range result.Warnings {
				warnText.Printf("! %s\n", warning)
			}
			return nil
		},
	}
	program.Flags().StringVar(&req.CardUID, "card-uid", "", "physical card UID")
	program.Flags().StringSliceVar(&functions, "functions", nil, "functions to program: payment,auth,signing")
	program.Flags().StringVar(&req.PIN, "pin", "", "card PIN (4-6 digits)")
	program.Flags().StringVar(&req.BoltcardID, "boltcard-id", "", "boltcard reference for the payment file")
	program.Flags().StringVar(&req.AuthKeyHash, "auth-key-hash", "", "auth key hash for the auth file")
	program.Flags().StringVar(&req.FrostShareID, "frost-share-id", "", "FROST share UUID for the signing file")
	program.Flags().StringVar(&req.NIP05, "nip05", "", "NIP-05 for the Nostr metadata file")

	wipe := &cobra.Command{
		Use:   "wipe",
		Short: "Zero all four card files",
		RunE: func(_ *cobra.Command, _ []string) error {
			manager := nfccard.NewManager(nfccard.ManagerConfig{
				Logger: logger.NewWithPrefix("nfccard: "),
			})
			result := manager.Deprovision(context.Background())
			successText.Printf("✓ wiped files: %v\n", result.WipedFiles)
			for _, failure := range result.Failures {
				warnText.Printf("! %s\n", failure)
			}
			return nil
		},
	}

	var verifyCardUID string
	var verifyFunctions []string

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Read back programmed files and check their contents",
		RunE: func(_ *cobra.Command, _ []string) error {
			manager := nfccard.NewManager(nfccard.ManagerConfig{
				Logger: logger.NewWithPrefix("nfccard: "),
			})

			fns := make([]nfccard.Function, 0, len(verifyFunctions))
			for _, fn := range verifyFunctions {
				fns = append(fns, nfccard.Function(fn))
			}

			result := manager.VerifyProgramming(context.Background(), verifyCardUID, fns)
			if result.Note != "" {
				warnText.Printf("! %s\n", result.Note)
			}
			if !result.Verified {
				return fmt.Errorf("verification failed: %s", strings.Join(result.Failures, "; "))
			}
			successText.Printf("✓ verified functions: %v\n", result.VerifiedFunctions)
			return nil
		},
	}
	verify.Flags().StringVar(&verifyCardUID, "card-uid", "", "physical card UID")
	verify.Flags().StringSliceVar(&verifyFunctions, "functions", nil, "functions to verify")

	card.AddCommand(program, verify, wipe)
	return card
}
