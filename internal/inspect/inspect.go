// Package inspect summarizes the structure of a loaded model: meshes,
// skinning, skeleton, morph channels and clips.
package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/rigscope/pkg/formats"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// weightEpsilon is the smallest skin weight counted as an influence.
const weightEpsilon = 1e-5

// MorphMesh lists the channels of one mesh that carries morph targets.
type MorphMesh struct {
	Name     string   `yaml:"name"`
	Channels []string `yaml:"channels"`
}

// Chip is a short status tag.
type Chip struct {
	Label string `yaml:"label"`
	OK    bool   `yaml:"ok"`
}

// Report is the structural summary of a model.
type Report struct {
	MeshCount      int `yaml:"meshes"`
	SkinnedCount   int `yaml:"skinned_meshes"`
	BoneCount      int `yaml:"bones"`
	ClipCount      int `yaml:"clips"`
	MorphMeshCount int `yaml:"morph_meshes"`

	// Over every vertex of every skinned mesh.
	WeightedPercent float64 `yaml:"weighted_percent"`
	AvgInfluences   float64 `yaml:"avg_influences"`
	MaxInfluences   int     `yaml:"max_influences"`

	BoneTree string         `yaml:"bone_tree"`
	Morphs   []MorphMesh    `yaml:"morphs,omitempty"`
	Clips    []formats.Clip `yaml:"clip_list,omitempty"`
	Chips    []Chip         `yaml:"chips"`
}

// Inspect walks root once and builds the report. Bones are counted per
// unique skeleton, so two meshes bound to one skeleton count its bones once.
func Inspect(root *scene.Node, clips []formats.Clip) Report {
	var (
		r          Report
		totalVerts int
		weighted   int
		influences int
		skeletons  []*scene.Skeleton
	)
	seenSkeleton := make(map[*scene.Skeleton]bool)

	root.Traverse(func(n *scene.Node) {
		if !n.IsMesh() || n.Mesh == nil {
			return
		}
		r.MeshCount++
		m := n.Mesh

		if m.SkinWeights != nil {
			r.SkinnedCount++
			totalVerts += len(m.SkinWeights)
			for _, w := range m.SkinWeights {
				count := 0
				for _, v := range w {
					if v > weightEpsilon {
						count++
					}
				}
				if count > 0 {
					weighted++
				}
				influences += count
				if count > r.MaxInfluences {
					r.MaxInfluences = count
				}
			}
			if m.Skeleton != nil && !seenSkeleton[m.Skeleton] {
				seenSkeleton[m.Skeleton] = true
				skeletons = append(skeletons, m.Skeleton)
			}
		}

		if m.HasMorphs() {
			r.Morphs = append(r.Morphs, MorphMesh{Name: n.Name, Channels: m.MorphChannelNames()})
		}
	})

	var tree []string
	for _, sk := range skeletons {
		r.BoneCount += len(sk.Bones)
		for _, b := range sk.Bones {
			if b.Parent == nil || !sk.Contains(b.Parent) {
				tree = append(tree, boneTree(b, 0))
			}
		}
	}
	r.BoneTree = strings.Join(tree, "\n")

	if totalVerts > 0 {
		r.WeightedPercent = 100 * float64(weighted) / float64(totalVerts)
		r.AvgInfluences = float64(influences) / float64(totalVerts)
	}

	r.MorphMeshCount = len(r.Morphs)
	r.Clips = clips
	r.ClipCount = len(clips)
	r.Chips = chips(r)
	return r
}

func boneTree(b *scene.Node, depth int) string {
	line := strings.Repeat("  ", depth)
	if depth > 0 {
		line += "└─"
	}
	lines := []string{line + b.Name}
	for _, c := range b.Children {
		if c.IsBone() {
			lines = append(lines, boneTree(c, depth+1))
		}
	}
	return strings.Join(lines, "\n")
}

func chips(r Report) []Chip {
	out := []Chip{{Label: "loaded", OK: true}}
	if r.SkinnedCount > 0 {
		out = append(out, Chip{Label: "rigged", OK: true})
	} else {
		out = append(out, Chip{Label: "no skinning", OK: false})
	}
	if r.MorphMeshCount > 0 {
		out = append(out, Chip{Label: "blendshapes", OK: true})
	}
	if r.ClipCount > 0 {
		out = append(out, Chip{Label: fmt.Sprintf("animations: %d", r.ClipCount), OK: true})
	}
	return out
}

// WeightedPct formats the weighted-vertex share with one decimal.
func (r Report) WeightedPct() string {
	return fmt.Sprintf("%.1f%%", r.WeightedPercent)
}

// AvgInf formats the average influence count with two decimals.
func (r Report) AvgInf() string {
	return fmt.Sprintf("%.2f", r.AvgInfluences)
}

// Write prints the report as aligned text.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "Meshes:          %d\n", r.MeshCount)
	fmt.Fprintf(w, "Skinned meshes:  %d\n", r.SkinnedCount)
	fmt.Fprintf(w, "Bones:           %d\n", r.BoneCount)
	fmt.Fprintf(w, "Clips:           %d\n", r.ClipCount)
	fmt.Fprintf(w, "Morph meshes:    %d\n", r.MorphMeshCount)
	fmt.Fprintf(w, "Weighted verts:  %s\n", r.WeightedPct())
	fmt.Fprintf(w, "Avg influences:  %s\n", r.AvgInf())
	fmt.Fprintf(w, "Max influences:  %d\n", r.MaxInfluences)

	labels := make([]string, len(r.Chips))
	for i, c := range r.Chips {
		labels[i] = "[" + c.Label + "]"
	}
	fmt.Fprintf(w, "Status:          %s\n", strings.Join(labels, " "))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Bones:")
	if r.BoneTree == "" {
		fmt.Fprintln(w, "(no bones found)")
	} else {
		fmt.Fprintln(w, r.BoneTree)
	}

	if len(r.Morphs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Morph targets:")
		for _, m := range r.Morphs {
			fmt.Fprintf(w, "  %s (%d)\n", m.Name, len(m.Channels))
			for _, ch := range m.Channels {
				fmt.Fprintf(w, "    %s\n", ch)
			}
		}
	}

	if len(r.Clips) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Clips:")
		for _, c := range r.Clips {
			fmt.Fprintf(w, "  %-24s %.2fs\n", c.Name, c.Duration)
		}
	}
}
