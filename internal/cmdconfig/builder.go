package cmdconfig

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CmdBuilder adds flags to a command. Flags are bound to viper keys of the
// same name when the command runs, so commands sharing a flag name do not
// overwrite each other's binding.
type CmdBuilder struct {
	cmd *cobra.Command
	err error
}

// OnCmd installs the pre-run hook on cmd and returns a builder for its flags.
func OnCmd(cmd *cobra.Command) *CmdBuilder {
	b := &CmdBuilder{cmd: cmd}

	original := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd); err != nil {
			return err
		}
		if CustomPreRunHook != nil {
			if err := CustomPreRunHook(cmd, args); err != nil {
				return err
			}
		}
		if original != nil {
			return original(cmd, args)
		}
		return nil
	}
	return b
}

// CustomPreRunHook runs after the flags are bound and before the command's own pre-run.
var CustomPreRunHook func(cmd *cobra.Command, args []string) error

func bindFlags(cmd *cobra.Command) error {
	var err error
	bind := func(f *pflag.Flag) {
		if err == nil {
			err = viper.BindPFlag(f.Name, f)
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return err
}

func (b *CmdBuilder) AddStringFlag(name, defaultValue, desc string, opts ...FlagOption) *CmdBuilder {
	b.cmd.Flags().String(name, defaultValue, desc)
	return b.apply(name, false, opts)
}

func (b *CmdBuilder) AddBoolFlag(name string, defaultValue bool, desc string, opts ...FlagOption) *CmdBuilder {
	b.cmd.Flags().Bool(name, defaultValue, desc)
	return b.apply(name, false, opts)
}

func (b *CmdBuilder) AddIntFlag(name string, defaultValue int, desc string, opts ...FlagOption) *CmdBuilder {
	b.cmd.Flags().Int(name, defaultValue, desc)
	return b.apply(name, false, opts)
}

func (b *CmdBuilder) AddDurationFlag(name string, defaultValue time.Duration, desc string, opts ...FlagOption) *CmdBuilder {
	b.cmd.Flags().Duration(name, defaultValue, desc)
	return b.apply(name, false, opts)
}

func (b *CmdBuilder) AddPersistentStringFlag(name, defaultValue, desc string, opts ...FlagOption) *CmdBuilder {
	b.cmd.PersistentFlags().String(name, defaultValue, desc)
	return b.apply(name, true, opts)
}

func (b *CmdBuilder) AddPersistentBoolFlag(name string, defaultValue bool, desc string, opts ...FlagOption) *CmdBuilder {
	b.cmd.PersistentFlags().Bool(name, defaultValue, desc)
	return b.apply(name, true, opts)
}

// AddPersistentVarFlag adds a custom value such as an enumflag.
func (b *CmdBuilder) AddPersistentVarFlag(value pflag.Value, name, desc string, opts ...FlagOption) *CmdBuilder {
	b.cmd.PersistentFlags().Var(value, name, desc)
	return b.apply(name, true, opts)
}

// Error returns the first error met while applying flag options.
func (b *CmdBuilder) Error() error {
	return b.err
}

func (b *CmdBuilder) apply(name string, persistent bool, opts []FlagOption) *CmdBuilder {
	flags := b.cmd.Flags()
	if persistent {
		flags = b.cmd.PersistentFlags()
	}
	for _, o := range opts {
		if err := o(b.cmd, flags, name); err != nil && b.err == nil {
			b.err = err
		}
	}
	return b
}

// FlagOption customises a flag after it is defined.
type FlagOption func(cmd *cobra.Command, flags *pflag.FlagSet, name string) error

// WithShortHand adds a one letter alias.
func WithShortHand(short string) FlagOption {
	return func(_ *cobra.Command, flags *pflag.FlagSet, name string) error {
		flags.Lookup(name).Shorthand = short
		return nil
	}
}

func WithHidden() FlagOption {
	return func(_ *cobra.Command, flags *pflag.FlagSet, name string) error {
		return flags.MarkHidden(name)
	}
}

// WithFilepath completes the flag with file names.
func WithFilepath(extensions ...string) FlagOption {
	return func(_ *cobra.Command, flags *pflag.FlagSet, name string) error {
		if len(extensions) == 0 {
			return flags.SetAnnotation(name, cobra.BashCompFilenameExt, nil)
		}
		return flags.SetAnnotation(name, cobra.BashCompFilenameExt, extensions)
	}
}
