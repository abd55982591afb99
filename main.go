// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"hookinject/classfile"
	"hookinject/plan"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("hookinject")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose int

	var rootCmd = &cobra.Command{
		Use:          "hookinject",
		Short:        "Splice compiled hook methods into JVM class files",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbose, nil)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log verbosity (repeat for more)")

	var applyCmd = &cobra.Command{
		Use:   "apply plan.toml",
		Short: "Apply the splices of a plan and write the modified classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(args[0])
			if err != nil {
				return err
			}
			written, err := p.Apply()
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	var method string
	var dumpCmd = &cobra.Command{
		Use:   "dump file.class",
		Short: "Print the methods and code of a class file as a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			class, err := classfile.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprint(cmd.OutOrStdout(), dumpTree(class, method))
			return nil
		},
	}
	dumpCmd.Flags().StringVarP(&method, "method", "m", "", "only dump methods with this name")

	var output string
	var publicizeCmd = &cobra.Command{
		Use:   "publicize in.class",
		Short: "Make every method of a class public",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = args[0]
			}
			return publicize(args[0], output)
		},
	}
	publicizeCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite the input)")

	rootCmd.AddCommand(applyCmd, dumpCmd, publicizeCmd)
	return rootCmd
}

func publicize(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	// code is copied through untouched, so it need not be decoded
	class, err := classfile.Decode(data, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	classfile.MakeMethodsPublic(class)
	result, err := class.Encode()
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	log.Infof("publicized %d methods of %s", len(class.Methods), class.Name)
	return os.WriteFile(out, result, 0o644)
}
