package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline, so the same logical flag
// (e.g. --alpha on both "figsearch search" and "figsearch serve") cannot drift.
type Flag struct {
	// Name is the long flag name (e.g. "alpha").
	Name string

	// Shorthand is the one-letter short flag (e.g. "k"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "search.alpha").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagStorePath    = "store"
	FlagIndex        = "index"
	FlagAPIListen    = "listen"
	FlagAPITarget    = "api-target"
	FlagTopK         = "top-k"
	FlagKEach        = "k-each"
	FlagAlpha        = "alpha"
	FlagBetaTitle    = "beta-title"
	FlagBetaSur      = "beta-sur"
	FlagSurrounding  = "surrounding"
	FlagChunkSize    = "chunk-size"
	FlagChunkOverlap = "chunk-overlap"
	FlagDropGarbled  = "drop-garbled"
	FlagTextProvider = "text-provider"
	FlagTextTarget   = "text-target"
	FlagTextModel    = "text-model"
	FlagTextDims     = "text-dimensions"
	FlagImageProv    = "image-provider"
	FlagImageTarget  = "image-target"
	FlagImageModel   = "image-model"
	FlagImageDims    = "image-dimensions"
	FlagEventsProv   = "events-provider"
	FlagEventsBroker = "events-brokers"
	FlagEventsTopic  = "events-topic"
)

// Flags is the registry shared by every figsearch command.
var Flags = FlagSet{
	FlagStorePath:    {Name: "store", ViperKey: "store.path", Description: "Store directory (default <config-dir>/store)"},
	FlagIndex:        {Name: "index", ViperKey: "store.index", Description: "Vector index kind"},
	FlagAPIListen:    {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagAPITarget:    {Name: "api-target", Shorthand: "a", ViperKey: "client.api_target", Description: "figsearch API server URL"},
	FlagTopK:         {Name: "top-k", Shorthand: "k", ViperKey: "search.top_k", Description: "Number of results to return"},
	FlagKEach:        {Name: "k-each", ViperKey: "search.k_each", Description: "Candidates recalled per channel"},
	FlagAlpha:        {Name: "alpha", ViperKey: "search.alpha", Description: "Weight of the text score against the image score"},
	FlagBetaTitle:    {Name: "beta-title", ViperKey: "search.beta_title", Description: "Weight of the title score within the text score"},
	FlagBetaSur:      {Name: "beta-sur", ViperKey: "search.beta_sur", Description: "Weight of the surrounding score within the text score"},
	FlagSurrounding:  {Name: "surrounding", ViperKey: "ingest.surrounding", Description: "Surrounding paragraphs kept per figure"},
	FlagChunkSize:    {Name: "chunk-size", ViperKey: "ingest.chunk_size", Description: "Characters per surrounding chunk"},
	FlagChunkOverlap: {Name: "chunk-overlap", ViperKey: "ingest.chunk_overlap", Description: "Characters shared by adjacent chunks"},
	FlagDropGarbled:  {Name: "drop-garbled", ViperKey: "ingest.drop_garbled", Description: "Drop surrounding paragraphs that look garbled"},
	FlagTextProvider: {Name: "text-provider", ViperKey: "text_embedding.provider", Description: "Text embedding provider (ollama, openai, hashing)"},
	FlagTextTarget:   {Name: "text-target", ViperKey: "text_embedding.target", Description: "Text embedding provider URL"},
	FlagTextModel:    {Name: "text-model", ViperKey: "text_embedding.model", Description: "Text embedding model"},
	FlagTextDims:     {Name: "text-dimensions", ViperKey: "text_embedding.dimensions", Description: "Text embedding dimensions"},
	FlagImageProv:    {Name: "image-provider", ViperKey: "image_embedding.provider", Description: "Image embedding provider (openai, hashing)"},
	FlagImageTarget:  {Name: "image-target", ViperKey: "image_embedding.target", Description: "Image embedding provider URL"},
	FlagImageModel:   {Name: "image-model", ViperKey: "image_embedding.model", Description: "Image embedding model"},
	FlagImageDims:    {Name: "image-dimensions", ViperKey: "image_embedding.dimensions", Description: "Image embedding dimensions"},
	FlagEventsProv:   {Name: "events-provider", ViperKey: "events.provider", Description: "Ingest event publisher (nop, kafka)"},
	FlagEventsBroker: {Name: "events-brokers", ViperKey: "events.brokers", Description: "Kafka brokers for ingest events"},
	FlagEventsTopic:  {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for ingest events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, key string, target *uint) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloatFlag registers a float64 flag on cmd from the given FlagSet.
func AddFloatFlag(cmd *cobra.Command, fs FlagSet, key string, target *float64) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetFloat64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddStringSliceFlag registers a comma separated string slice flag.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, key string, target *[]string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetStringSlice(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringSliceVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringSliceVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper holding only the values from NewDefaultConfig.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
