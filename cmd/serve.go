package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	"github.com/mathi-naickan/opensaf-sub000/internal/config"
	"github.com/mathi-naickan/opensaf-sub000/internal/engine"
	"github.com/mathi-naickan/opensaf-sub000/internal/messaging"
	"github.com/mathi-naickan/opensaf-sub000/internal/metrics"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	"github.com/mathi-naickan/opensaf-sub000/internal/reconciler"
	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"
)

var (
	serveConfigPath string
	serveKubernetes bool
	serveCheckpoint string
)

// serveCmd defines the serve command structure: it loads cluster
// configuration, starts the reconciliation manager, and drives
// configuration changes through the engine's single-threaded event loop
// until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the redundancy engine, watching a configuration tree for changes",
	Long: `serve loads cluster configuration, starts the reconciliation manager
watching either the local filesystem or a Kubernetes cluster for
ServiceGroup/ServiceUnit/ServiceInstance/DependencyEdge changes, and drives
them through the engine's single-threaded event loop until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "config tree directory (defaults to the user config directory)")
	serveCmd.Flags().BoolVar(&serveKubernetes, "kubernetes", false, "watch ServiceGroup/ServiceUnit/ServiceInstance/DependencyEdge CRDs instead of the filesystem")
	serveCmd.Flags().StringVar(&serveCheckpoint, "checkpoint-file", "", "path to persist engine snapshots (disabled when empty)")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath := serveConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	clusterConfig, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading cluster configuration: %w", err)
	}

	nodes := make([]model.NodeName, 0, len(clusterConfig.Nodes))
	for _, n := range clusterConfig.Nodes {
		nodes = append(nodes, model.NodeName(n.Name))
	}

	transport := messaging.NewInProcTransport(nodes)
	transport.Start()
	defer transport.Stop()

	var checkpoint engine.CheckpointSink = engine.NoopCheckpoint{}
	if serveCheckpoint != "" {
		fileCheckpoint, err := engine.NewFileCheckpoint(serveCheckpoint)
		if err != nil {
			return fmt.Errorf("opening checkpoint file: %w", err)
		}
		checkpoint = fileCheckpoint
	}

	adminReplies := engine.NewChannelAdminReplySink(64)

	registry := prometheus.NewRegistry()
	metricsReg := metrics.NewRegistry(registry)
	eng := engine.New(transport, checkpoint, adminReplies, metricsReg)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go eng.Run(ctx)
	go drainAdminReplies(ctx, adminReplies)

	if clusterConfig.Metrics.Enabled {
		go serveMetrics(ctx, clusterConfig.Metrics.Addr, registry)
	}

	manager, err := setupReconcileManager(clusterConfig, configPath, eng, metricsReg)
	if err != nil {
		return err
	}
	if serveKubernetes {
		if recorder, err := newKubernetesEventRecorder(); err != nil {
			logging.Error("Serve", err, "disabling Kubernetes event recording")
		} else {
			manager.SetEventRecorder(recorder)
		}
	}
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("starting reconciliation manager: %w", err)
	}
	defer manager.Stop()

	logging.Info("Serve", "amfd serving from %s (mode=%s)", configPath, manager.GetWatchMode())
	<-ctx.Done()
	logging.Info("Serve", "shutting down")
	return nil
}

func setupReconcileManager(clusterConfig config.ClusterConfig, configPath string, eng *engine.Engine, metricsReg *metrics.Registry) (*reconciler.Manager, error) {
	mode := reconciler.WatchModeFromKubernetesFlag(serveKubernetes)

	manager := reconciler.NewManager(reconciler.ManagerConfig{
		Mode:             mode,
		FilesystemPath:   configPath,
		ReconcileTimeout: 10 * time.Second,
	})

	storage := config.NewStorageWithPath(configPath)
	reconcilers := []reconciler.Reconciler{
		reconciler.NewServiceGroupReconciler(storage, eng, metricsReg),
		reconciler.NewServiceUnitReconciler(storage, eng, metricsReg),
		reconciler.NewServiceInstanceReconciler(storage, eng, metricsReg),
		reconciler.NewDependencyEdgeReconciler(storage, eng, metricsReg),
	}
	for _, r := range reconcilers {
		if err := manager.RegisterReconciler(r); err != nil {
			return nil, fmt.Errorf("registering %s reconciler: %w", r.GetResourceType(), err)
		}
	}
	return manager, nil
}

// newKubernetesEventRecorder builds an EventRecorder from the cluster's
// in-pod rest config so reconcile failures surface as Kubernetes events
// against the offending object.
func newKubernetesEventRecorder() (*reconciler.KubernetesEventRecorder, error) {
	restConfig, err := reconciler.GetRestConfig()
	if err != nil {
		return nil, fmt.Errorf("getting Kubernetes config: %w", err)
	}
	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("building Kubernetes client: %w", err)
	}
	return reconciler.NewKubernetesEventRecorder(client, "amfd"), nil
}

func drainAdminReplies(ctx context.Context, sink *engine.ChannelAdminReplySink) {
	for {
		select {
		case <-ctx.Done():
			return
		case reply := <-sink.Replies():
			logging.Info("Serve", "admin invocation %d completed: %s", reply.Invocation, reply.Status)
		}
	}
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logging.Info("Serve", "metrics listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Error("Serve", err, "metrics server stopped")
	}
}
