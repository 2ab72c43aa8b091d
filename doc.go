// Package deployq coordinates concurrent deployments so that, within a
// single exclusion domain (environment, cloud provider, region, and
// cell), only one deployment runs at a time, plus a configurable buffer
// window after it finishes.
//
// A deployment is enqueued, waits out any blockers in the same domain, is
// marked started and later finished, and may be cancelled at any point
// before it finishes. The package also surfaces cross-environment
// visibility: which deployments are currently running anomalously long
// relative to their own history, and which cells exist for a given
// environment.
//
// # Basic Usage
//
//	import "github.com/neondatabase/deployq"
//
//	ctx := context.Background()
//
//	client, err := deployq.New(ctx, os.Getenv("DATABASE_URL"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	id, err := client.Enqueue(ctx, deployq.Location{
//	    Environment:   "prod",
//	    CloudProvider: "aws",
//	    Region:        "us-east-1",
//	    CellIndex:     3,
//	}, deployq.Payload{Component: "api", Version: "v1.42.0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.WaitUntilStarted(ctx, id); err != nil {
//	    log.Fatal(err)
//	}
//	// ... perform the deployment ...
//	if err := client.MarkFinished(ctx, id); err != nil {
//	    log.Fatal(err)
//	}
//
// # Notifications
//
// A Client can be configured with a Notifier (see internal/notify for the
// Slack and file-based implementations shipped with this module) to
// receive a best-effort stream of lifecycle events:
//
//	client, err := deployq.New(ctx, databaseURL,
//	    deployq.WithNotifier(notify.NewSlackNotifier(token, channel)))
package deployq
