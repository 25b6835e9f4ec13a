package pipeline

import (
	"context"

	"github.com/nimbusfs/coreobj/pkg/apperr"
	"github.com/nimbusfs/coreobj/pkg/coreobj"
	"github.com/nimbusfs/coreobj/pkg/objstore"
)

// deleteMarkerMimeType is the mime_type recorded on a DeleteMarker
// version (spec §4.7 step 2), matching
// original_source/src/api/s3_put.rs's handle_delete.
const deleteMarkerMimeType = "application/x-delete-marker"

// Delete inserts a fresh DeleteMarker version for (bucket, key) (spec
// §4.7). If the object is already absent, or every existing version is
// itself a DeleteMarker, this is a no-op and returns ZeroUUID: DELETE
// never fails on a missing key.
func Delete(ctx context.Context, core *coreobj.Core, bucket, key string) (uuid objstore.UUID, err error) {
	defer mon.Task()(&ctx)(&err)

	object, found, err := core.ObjectTable.Get(ctx, bucket, key)
	if err != nil {
		return objstore.ZeroUUID, apperr.Wrap(apperr.KindInternal, err)
	}
	if !found || !object.HasLiveVersion() {
		return objstore.ZeroUUID, nil
	}

	// The marker must order after every existing version, even one written
	// in the same millisecond.
	ts := objstore.NowMsec()
	for _, v := range object.Versions {
		if v.Timestamp >= ts {
			ts = v.Timestamp + 1
		}
	}

	markerUUID := objstore.NewUUID()
	marker := objstore.ObjectVersion{
		UUID:       markerUUID,
		Timestamp:  ts,
		MimeType:   deleteMarkerMimeType,
		IsComplete: true,
		Data:       objstore.DeleteMarkerData(),
	}

	update := objstore.NewObject(bucket, key, marker)
	if err := core.ObjectTable.Insert(ctx, update); err != nil {
		return objstore.ZeroUUID, apperr.Wrap(apperr.KindQuorumUnavailable, err)
	}
	return markerUUID, nil
}
