package da

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/RiemaLabs/dividend-ledger/checkpoint"
)

// Submit posts c as a single blob and returns the blob id.
func (b *Backend) Submit(ctx context.Context, c *checkpoint.Checkpoint) ([]byte, error) {
	checkpointJSON, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode checkpoint")
	}
	log.WithField("size", len(checkpointJSON)).Debug("Submitting checkpoint blob")
	ctx, cancel := context.WithTimeout(ctx, b.SubmitTimeout)
	defer cancel()
	ids, err := b.Client.Submit(ctx, [][]byte{checkpointJSON}, -1, b.Namespace)
	if err != nil {
		return nil, errors.Wrap(err, "blob submission failed")
	}
	if len(ids) != 1 {
		return nil, errors.Errorf("blob submission returned %d ids", len(ids))
	}
	log.WithField("id", hex.EncodeToString(ids[0])).Info("Checkpoint blob submitted")
	return ids[0], nil
}

func UploadCheckpointByDA(c *checkpoint.Checkpoint, nodeRPC, authToken, namespaceID, submitTimeout string) error {
	backend, err := NewBackend(nodeRPC, authToken, namespaceID, submitTimeout)
	if err != nil {
		return errors.Wrap(err, "failed to connect to DA node")
	}
	_, err = backend.Submit(context.Background(), c)
	return err
}
