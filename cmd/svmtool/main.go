// Command svmtool trains, evaluates and manages SVM models from CSV
// data: train/predict/cv run against the configured engine, export and
// import move models between the store and the engine's file format.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
	yaml "gopkg.in/yaml.v2"

	"svmbridge/engine"
	"svmbridge/enginetest"
	"svmbridge/modelstore"
	"svmbridge/svm"
)

type Config struct {
	Engine string `yaml:"engine"`
	Store  struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Engine = "memory"
	cfg.Store.Path = "./models.db"
	cfg.Log.Level = "info"
	return cfg
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer file.Close()
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", cfg.Log.Level, err)
	}
	if cfg.Log.File == "" {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(level)
		return c.Build()
	}
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    10, // MB
		MaxBackups: 3,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, level)
	return zap.New(core), nil
}

func main() {
	engine.Register("memory", enginetest.New())

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "train":
		err = runTrain(args)
	case "predict":
		err = runPredict(args)
	case "cv":
		err = runCV(args)
	case "export":
		err = runExport(args)
	case "import":
		err = runImport(args)
	case "list":
		err = runList(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: svmtool <train|predict|cv|export|import|list> [flags]

train   -data train.csv -params params.yaml -name NAME [-out model.json]
predict -data x.csv (-name NAME | -in model.json)
cv      -data train.csv -params params.yaml -folds N
export  -name NAME -out model.json
import  -in model.json -name NAME
list

Common flags: -config config.yaml`)
}

type env struct {
	cfg   Config
	log   *zap.Logger
	svm   *svm.SVM
	store *modelstore.Store
}

func setup(fs *flag.FlagSet, args []string, needStore bool) (*env, error) {
	configPath := fs.String("config", "config.yaml", "config file path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	eng, err := engine.Open(cfg.Engine)
	if err != nil {
		return nil, err
	}
	e := &env{
		cfg: cfg,
		log: logger,
		svm: svm.New(eng, svm.WithLogger(logger), svm.WithModelCache(8)),
	}
	if needStore {
		if e.store, err = modelstore.Open(cfg.Store.Path); err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
	}
	logger.Debug("engine ready", zap.String("engine", cfg.Engine), zap.Int("version", e.svm.Version()))
	return e, nil
}

func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
	e.log.Sync()
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	dataPath := fs.String("data", "", "training CSV, last column is the target")
	paramsPath := fs.String("params", "", "parameter mapping YAML")
	name := fs.String("name", "", "store the model under this name")
	out := fs.String("out", "", "also save in the engine's file format")
	e, err := setup(fs, args, true)
	if err != nil {
		return err
	}
	defer e.close()

	x, y, err := readLabeledCSV(*dataPath)
	if err != nil {
		return err
	}
	params, err := readParams(*paramsPath)
	if err != nil {
		return err
	}

	model, err := e.svm.Train(x, y, params)
	if err != nil {
		return err
	}
	e.log.Info("trained", zap.Int("samples", len(y)))

	if *name != "" {
		if err := e.store.Put(*name, params, model); err != nil {
			return err
		}
		fmt.Printf("stored model %q\n", *name)
	}
	if *out != "" {
		ok, err := e.svm.SaveModel(*out, params, model)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("engine failed to write %s", *out)
		}
		fmt.Printf("saved model to %s\n", *out)
	}
	if *name == "" && *out == "" {
		return fmt.Errorf("nothing to do: pass -name and/or -out")
	}
	return nil
}

func runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	dataPath := fs.String("data", "", "feature CSV")
	name := fs.String("name", "", "model name in the store")
	in := fs.String("in", "", "model file in the engine's format")
	e, err := setup(fs, args, true)
	if err != nil {
		return err
	}
	defer e.close()

	x, err := readFeatureCSV(*dataPath)
	if err != nil {
		return err
	}

	var params, model map[string]interface{}
	switch {
	case *name != "":
		if params, model, err = e.store.Get(*name); err != nil {
			return err
		}
	case *in != "":
		params, model, err = e.svm.LoadModel(*in)
		if err != nil {
			return err
		}
		if model == nil {
			return fmt.Errorf("no loadable model at %s", *in)
		}
	default:
		return fmt.Errorf("pass -name or -in")
	}

	labels, err := e.svm.Predict(x, params, model)
	if err != nil {
		return err
	}
	for _, v := range labels {
		fmt.Println(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return nil
}

func runCV(args []string) error {
	fs := flag.NewFlagSet("cv", flag.ExitOnError)
	dataPath := fs.String("data", "", "training CSV, last column is the target")
	paramsPath := fs.String("params", "", "parameter mapping YAML")
	folds := fs.Int("folds", 5, "number of folds")
	e, err := setup(fs, args, false)
	if err != nil {
		return err
	}
	defer e.close()

	x, y, err := readLabeledCSV(*dataPath)
	if err != nil {
		return err
	}
	params, err := readParams(*paramsPath)
	if err != nil {
		return err
	}

	predicted, err := e.svm.CrossValidate(x, y, params, *folds)
	if err != nil {
		return err
	}
	hits := 0
	for i, v := range predicted {
		if v == y[i] {
			hits++
		}
	}
	fmt.Printf("cv accuracy: %.4f (%d/%d)\n", float64(hits)/float64(len(y)), hits, len(y))
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	name := fs.String("name", "", "model name in the store")
	out := fs.String("out", "", "destination model file")
	e, err := setup(fs, args, true)
	if err != nil {
		return err
	}
	defer e.close()

	if *name == "" || *out == "" {
		return fmt.Errorf("pass -name and -out")
	}
	params, model, err := e.store.Get(*name)
	if err != nil {
		return err
	}
	ok, err := e.svm.SaveModel(*out, params, model)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("engine failed to write %s", *out)
	}
	fmt.Printf("exported %q to %s\n", *name, *out)
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "model file in the engine's format")
	name := fs.String("name", "", "store the model under this name")
	e, err := setup(fs, args, true)
	if err != nil {
		return err
	}
	defer e.close()

	if *in == "" || *name == "" {
		return fmt.Errorf("pass -in and -name")
	}
	params, model, err := e.svm.LoadModel(*in)
	if err != nil {
		return err
	}
	if model == nil {
		return fmt.Errorf("no loadable model at %s", *in)
	}
	if err := e.store.Put(*name, params, model); err != nil {
		return err
	}
	fmt.Printf("imported %s as %q\n", *in, *name)
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	e, err := setup(fs, args, true)
	if err != nil {
		return err
	}
	defer e.close()

	entries, err := e.store.List()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("%s\t%s\n", entry.Name, entry.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
