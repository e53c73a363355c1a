package main

import (
	"flag"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the preprocessing options. It can be loaded from a YAML
// file; flags given on the command line take precedence.
type Config struct {
	Input       string `yaml:"input"`
	Output      string `yaml:"output"`
	LengthLimit *int   `yaml:"length_limit"`
	DropLast    bool   `yaml:"drop_last"`
	JointTrain  bool   `yaml:"joint_train"`
	Upload      string `yaml:"upload"`
	CacheSize   int    `yaml:"cache_size"`
	Verbose     bool   `yaml:"verbose"`
}

func DefaultConfig() Config {
	return Config{
		Output:     "data",
		JointTrain: true,
		CacheSize:  4096,
	}
}

// LoadConfig overlays the YAML file at `path` onto `config`.
func LoadConfig(path string, config *Config) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "cannot read config")
	}
	if err := yaml.Unmarshal(contents, config); err != nil {
		return errors.Wrapf(err, "cannot parse config %s", path)
	}
	return nil
}

// OutputDir is the directory the dataset is written to, named after the
// input directory. It is cleared before the dataset is written.
func (config *Config) OutputDir() string {
	return filepath.Join(config.Output,
		filepath.Base(filepath.Clean(config.Input)))
}

// within reports whether `path` is `dir` or lies below it.
func within(path string, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// CheckOutputDir rejects an output directory that is, contains or lies
// inside the input directory.
func CheckOutputDir(config *Config) error {
	input, err := filepath.Abs(config.Input)
	if err != nil {
		return errors.Wrapf(err, "cannot resolve input %s", config.Input)
	}
	outDir, err := filepath.Abs(config.OutputDir())
	if err != nil {
		return errors.Wrapf(err, "cannot resolve output %s", config.Output)
	}
	if within(input, outDir) || within(outDir, input) {
		return errors.Errorf("output directory %s overlaps input %s",
			outDir, input)
	}
	return nil
}

func checkLengthLimit(limit int) error {
	if limit < 0 {
		return errors.Errorf("length_limit must not be negative: %d", limit)
	}
	return nil
}

// ParseLengthLimit parses the `length_limit` option. An empty string
// means no limit.
func ParseLengthLimit(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	limit, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.Errorf("length_limit must be an integer: %q", s)
	}
	if err := checkLengthLimit(limit); err != nil {
		return nil, err
	}
	return &limit, nil
}

// ParseUpload splits an `s3://bucket/prefix` URL.
func ParseUpload(upload string) (bucket string, prefix string, err error) {
	u, err := url.Parse(upload)
	if err != nil {
		return "", "", errors.Wrapf(err, "invalid upload URL %q", upload)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", errors.Errorf("upload must be s3://bucket/prefix, "+
			"got %q", upload)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// ParseArgs builds the Config from the command line.
func ParseArgs(fs *flag.FlagSet, args []string) (Config, error) {
	config := DefaultConfig()
	configPath := fs.String("config", "", "optional YAML config file")
	input := fs.String("input", "", "directory of bAbI task files")
	output := fs.String("output", config.Output,
		"directory to write the processed dataset under")
	lengthLimit := fs.String("length_limit", "",
		"discard stories with more input tokens than this")
	dropLast := fs.Bool("drop_last", false,
		"drop the final story of each file instead of flushing it")
	jointTrain := fs.Bool("joint_train", config.JointTrain,
		"join all training files into one training set")
	upload := fs.String("upload", "",
		"also upload the dataset to s3://bucket/prefix")
	cacheSize := fs.Int("cache_size", config.CacheSize,
		"token lookup cache size")
	verbose := fs.Bool("verbose", false, "log every file written")
	if err := fs.Parse(args); err != nil {
		return config, err
	}

	if *configPath != "" {
		if err := LoadConfig(*configPath, &config); err != nil {
			return config, err
		}
	}

	var limitErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			config.Input = *input
		case "output":
			config.Output = *output
		case "length_limit":
			config.LengthLimit, limitErr = ParseLengthLimit(*lengthLimit)
		case "drop_last":
			config.DropLast = *dropLast
		case "joint_train":
			config.JointTrain = *jointTrain
		case "upload":
			config.Upload = *upload
		case "cache_size":
			config.CacheSize = *cacheSize
		case "verbose":
			config.Verbose = *verbose
		}
	})
	if limitErr != nil {
		return config, limitErr
	}
	// Flag values went through ParseLengthLimit; this catches the
	// config file's.
	if config.LengthLimit != nil {
		if err := checkLengthLimit(*config.LengthLimit); err != nil {
			return config, err
		}
	}
	if config.Input == "" {
		return config, errors.New("must provide -input for directory source")
	}
	if err := CheckOutputDir(&config); err != nil {
		return config, err
	}
	if config.CacheSize < 1 {
		return config, errors.Errorf("cache_size must be positive: %d",
			config.CacheSize)
	}
	if config.Upload != "" {
		if _, _, err := ParseUpload(config.Upload); err != nil {
			return config, err
		}
	}
	return config, nil
}
