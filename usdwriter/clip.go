package usdwriter

import "github.com/Carmen-Shannon/usdscene/usdstage"

// seedOrUpdateClip implements spec §4.4.3's per-referencing-prim value-clip
// retiming table maintenance: seed the clip metadata on first reference,
// then on every subsequent update either append a new (parentTime,
// assetIndex)/(parentTime, childTime) pair or, if parentTime was already
// present, overwrite its entry in place. clipAssetPath identifies which
// clip asset backs childTime; if it is not yet in clip.AssetPaths it is
// appended (or, when the asset it would replace is no longer referenced
// by any active entry, swapped in-place instead of growing the list).
func seedOrUpdateClip(clip *usdstage.ClipSet, clipAssetPath string, parentTime, childTime float64) {
	assetIndex := indexOfOrAppend(clip, clipAssetPath)

	for i, pair := range clip.Times {
		if pair[0] == parentTime {
			clip.Times[i][1] = childTime
			clip.Active[i][1] = float64(assetIndex)
			return
		}
	}
	clip.Times = append(clip.Times, [2]float64{parentTime, childTime})
	clip.Active = append(clip.Active, [2]float64{parentTime, float64(assetIndex)})
}

// indexOfOrAppend returns clipAssetPath's index within clip.AssetPaths,
// appending it if absent. An asset no longer targeted by any entry in
// clip.Active is replaced in place instead of growing the list, the
// "replace when unused, else append" rule spec §4.4.3 describes.
func indexOfOrAppend(clip *usdstage.ClipSet, clipAssetPath string) int {
	for i, p := range clip.AssetPaths {
		if p == clipAssetPath {
			return i
		}
	}

	used := make(map[int]bool, len(clip.Active))
	for _, pair := range clip.Active {
		used[int(pair[1])] = true
	}
	for i := range clip.AssetPaths {
		if !used[i] {
			clip.AssetPaths[i] = clipAssetPath
			return i
		}
	}

	clip.AssetPaths = append(clip.AssetPaths, clipAssetPath)
	return len(clip.AssetPaths) - 1
}
