package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"schemaorg_pipeline/cfg"
	"schemaorg_pipeline/cli"
	"schemaorg_pipeline/extract"
	"schemaorg_pipeline/pipeline"
	"schemaorg_pipeline/translate"
	"schemaorg_pipeline/translate/sparql"
	"schemaorg_pipeline/translate/xslt"
	"schemaorg_pipeline/util/logger"
	"schemaorg_pipeline/util/network"

	"github.com/adampresley/sigint"
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const version = "v1.0.0"

func main() {
	// Init logger
	log := logger.New(logrus.InfoLevel)

	// Parse command line arguments
	flags, err := cli.Parse()
	if flags.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if cli.IsErrOfType(err, goFlags.ErrHelp) {
		// Help message will be printed by go-flags
		os.Exit(0)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(flags.LogLevel)

	// Read program config
	conf, isNewCfg, err := cfg.Init(log, flags.ProgramCfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if isNewCfg {
		log.Infof("New config is written to %v, please verify it and start this program again", flags.ProgramCfgPath)
		return
	}
	if flags.Backend != "" {
		conf.General.Backend = cfg.Backend(flags.Backend)
	}
	if flags.OutputDir != "" {
		conf.General.OutputDir = flags.OutputDir
	}
	if flags.MappingPath == "" {
		log.Fatal("Mapping path is not specified, see --help")
	}

	// Compile mapping
	httpClient := network.NewHttpClient(conf.SPARQL.RespTimeout)
	log.WithField("backend", conf.General.Backend).Infof("Compiling mapping %v", flags.MappingPath)
	mapping, err := pipeline.ReadURI(httpClient, flags.MappingPath)
	if err != nil {
		log.Fatal(err)
	}
	doc, err := translate.Compile(newFactory(log, conf), string(mapping))
	if err != nil {
		log.Fatal(errors.Wrap(err, "Compile mapping"))
	}
	if flags.CompileOnly {
		fmt.Print(doc)
		return
	}

	// Collect items and build the engine for the compiled document
	transformer, items, closeFn, err := prepare(conf, flags, httpClient, doc)
	if err != nil {
		log.Fatal(err)
	}
	defer closeFn()
	if len(items) == 0 {
		log.Warn("Nothing to process, specify input or subjects")
		return
	}

	// Run pipeline, stopping gracefully on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigint.ListenForSIGINT(func() {
		log.Warn("Interrupted, waiting for running items to finish")
		cancel()
	})

	log.Infof("Processing %v items", len(items))
	report, err := pipeline.NewRepo(log, conf).Run(ctx, transformer, items)
	if err != nil {
		log.Fatal(err)
	}
	reportPath, err := report.Write()
	if err != nil {
		log.Error(err)
	}
	printSummary(os.Stderr, report, reportPath)

	if !report.OK() {
		closeFn()
		os.Exit(1)
	}
}

// newFactory returns handler factory of the backend selected in <conf>
func newFactory(log *logrus.Logger, conf cfg.Root) translate.Factory {
	if conf.General.Backend == cfg.SPARQL {
		opts := lo.Map(conf.SPARQL.Prefixes, func(p cfg.Prefix, _ int) sparql.Option {
			return sparql.WithPrefix(p.Name, p.IRI)
		})
		if conf.SPARQL.InstanceType != "" {
			opts = append(opts, sparql.WithInstanceType(conf.SPARQL.InstanceType))
		}
		return sparql.NewFactory(opts...)
	}
	opts := lo.Map(conf.XSLT.Prefixes, func(p cfg.Prefix, _ int) xslt.Option {
		return xslt.WithPrefix(p.Name, p.IRI)
	})
	opts = append(opts, xslt.WithUndeclaredPrefixFunc(func(prefix string) {
		log.WithField("prefix", prefix).Warn("Namespace prefix is not declared, declare it with @prefix in the mapping " +
			"or in xslt.prefixes of the config, otherwise the XSLT processor rejects the stylesheet")
	}))
	return xslt.NewFactory(opts...)
}

// prepare returns transformer executing compiled <doc>, items to process and function releasing the transformer
func prepare(conf cfg.Root, flags cli.Flags, httpClient *http.Client, doc string) (
	extract.Transformer, []pipeline.Item, func(), error) {
	noop := func() {}

	if conf.General.Backend == cfg.SPARQL {
		items, err := pipeline.SubjectItems(httpClient, flags.Subjects, flags.Input, conf.SPARQL.OutputExt)
		if err != nil {
			return nil, nil, noop, err
		}
		client := extract.NewSPARQLClient(httpClient, conf.SPARQL.Endpoint, conf.SPARQL.Accept)
		return client.Query(doc), items, noop, nil
	}

	if flags.Input == "" {
		return nil, nil, noop, errors.New("Input is not specified, see --help")
	}
	items, err := pipeline.XMLItems(httpClient, flags.Input, conf.XSLT.OutputExt)
	if err != nil {
		return nil, nil, noop, err
	}
	processor, err := extract.NewXSLTProcessor(conf.XSLT.Processor, doc)
	if err != nil {
		return nil, nil, noop, err
	}
	return processor, items, func() { processor.Close() }, nil
}

// printSummary writes colored summary of <report> to <w>
func printSummary(w io.Writer, report pipeline.Report, reportPath string) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%v processed, %v failed, %v skipped of %v in %v\n", green(len(report.Processed)),
		red(len(report.Failed)), yellow(len(report.Skipped)), report.Total, report.Duration.Round(time.Millisecond))
	for _, failure := range report.Failed {
		fmt.Fprintf(w, "  %v %v: %v\n", red("Failed"), failure.Item, failure.Reason)
	}
	if reportPath != "" {
		fmt.Fprintf(w, "Report: %v\n", reportPath)
	}
}
