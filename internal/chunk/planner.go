package chunk

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dgallion1/docindexer/internal/structure"
)

// Action is the planner's per-node decision.
type Action string

const (
	ActionKeep  Action = "keep_as_is"
	ActionChunk Action = "chunk"
	ActionMerge Action = "merge"
)

// ChunkType records how a chunk was produced.
type ChunkType string

const (
	Single ChunkType = "single"
	Split  ChunkType = "split"
	Merged ChunkType = "merged"
)

// Config controls chunk planning.
type Config struct {
	MinChunkSize  int     // Minimum chunk size in characters.
	MaxChunkSize  int     // Maximum chunk size in characters.
	ChunkOverlap  int     // Overlap between split chunks in characters.
	SizeTolerance float64 // Fractional allowance over MaxChunkSize, e.g. 0.1.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinChunkSize:  500,
		MaxChunkSize:  2000,
		ChunkOverlap:  50,
		SizeTolerance: 0.1,
	}
}

// SplitPreview describes one sub-chunk of a to-be-split node.
type SplitPreview struct {
	Index   int    `json:"index"`
	Size    int    `json:"size"`
	Preview string `json:"preview"`
}

// PlanEntry is the planning record for one tree node.
type PlanEntry struct {
	ID             int            `json:"id"`
	OriginalSize   int            `json:"original_size"`
	Action         Action         `json:"action"`
	Chunks         []SplitPreview `json:"chunks"`
	MergeGroup     string         `json:"merge_group,omitempty"`
	MergeCandidate bool           `json:"merge_candidate,omitempty"`
	ChildElements  []*PlanEntry   `json:"child_elements,omitempty"`
}

// Plan is the chunking plan for a whole document.
type Plan struct {
	DocumentID   int          `json:"document_id"`
	TotalSize    int          `json:"total_size"`
	MinChunkSize int          `json:"min_chunk_size"`
	MaxChunkSize int          `json:"max_chunk_size"`
	Elements     []*PlanEntry `json:"elements"`
}

// Chunk is one materialized text chunk with provenance.
type Chunk struct {
	ChunkID        string    `json:"chunk_id"`
	SourceElement  int       `json:"source_element,omitempty"`
	SourceElements []int     `json:"source_elements,omitempty"`
	ChunkType      ChunkType `json:"chunk_type"`
	Content        string    `json:"content"`
	Size           int       `json:"size"`
}

// Planner decides, per tree node, whether to split oversized content,
// merge undersized siblings, or keep the node as a standalone chunk, then
// materializes the decisions. It holds no per-document state and may be
// reused across documents.
type Planner struct {
	cfg      Config
	splitter *Splitter
	log      *slog.Logger
}

// NewPlanner creates a planner. log may be nil; it is only used to flag
// id lookups that miss, which indicates a plan/tree mismatch.
func NewPlanner(cfg Config, log *slog.Logger) *Planner {
	return &Planner{
		cfg:      cfg,
		splitter: NewSplitter(cfg.MaxChunkSize, cfg.ChunkOverlap),
		log:      log,
	}
}

func (p *Planner) maxTolerated() float64 {
	return float64(p.cfg.MaxChunkSize) * (1 + p.cfg.SizeTolerance)
}

// CreatePlan walks the tree and produces a plan entry per element, then
// runs merge-candidate identification over every sibling scope.
func (p *Planner) CreatePlan(doc *structure.Node) *Plan {
	plan := &Plan{
		DocumentID:   doc.ID,
		TotalSize:    doc.ContentSize,
		MinChunkSize: p.cfg.MinChunkSize,
		MaxChunkSize: p.cfg.MaxChunkSize,
		Elements:     []*PlanEntry{},
	}
	for _, el := range doc.Elements {
		plan.Elements = append(plan.Elements, p.planElement(el))
	}
	p.identifyMergeCandidates(plan.Elements, "")
	return plan
}

// planElement decides split-vs-keep for one node and recurses into its
// children. Merge decisions are made later, per sibling scope.
func (p *Planner) planElement(n *structure.Node) *PlanEntry {
	entry := &PlanEntry{
		ID:           n.ID,
		OriginalSize: n.ContentSize,
		Action:       ActionKeep,
		Chunks:       []SplitPreview{},
	}

	if float64(n.ContentSize) > p.maxTolerated() {
		entry.Action = ActionChunk
		for i, piece := range p.splitter.Split(n.Content) {
			entry.Chunks = append(entry.Chunks, SplitPreview{
				Index:   i,
				Size:    runeLen(piece),
				Preview: preview(piece),
			})
		}
	}

	for _, child := range n.Elements {
		entry.ChildElements = append(entry.ChildElements, p.planElement(child))
	}
	return entry
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= 50 {
		return text
	}
	return string(runes[:50]) + "..."
}

// identifyMergeCandidates scans a sibling scope left to right, grouping
// runs of consecutive undersized non-chunk entries. A group that reaches
// MinChunkSize becomes a merge group, unless its accumulated size
// overshoots MaxChunkSize beyond tolerance, in which case the members
// revert to keep_as_is — a deliberate policy fallback, not an error.
// Merge groups never span different parents; each entry's children are
// processed as their own independent scope.
func (p *Planner) identifyMergeCandidates(entries []*PlanEntry, parentPath string) {
	groupCount := 0
	var group []*PlanEntry
	var groupID string
	size := 0

	// finalize closes a pending group: merge when it met the minimum,
	// otherwise release the members back to standalone chunks.
	finalize := func() {
		if len(group) == 0 {
			return
		}
		if size >= p.cfg.MinChunkSize {
			for _, e := range group {
				e.Action = ActionMerge
				e.MergeGroup = groupID
			}
		} else {
			for _, e := range group {
				e.Action = ActionKeep
				e.MergeCandidate = false
			}
		}
		group, size = nil, 0
	}

	for _, entry := range entries {
		if entry.Action == ActionChunk {
			// An already-split entry is never merged and breaks any
			// run of candidates.
			finalize()
			continue
		}

		if entry.OriginalSize < p.cfg.MinChunkSize {
			if len(group) == 0 {
				groupID = fmt.Sprintf("merge_%s_%d", parentPath, groupCount)
				groupCount++
			}
			group = append(group, entry)
			size += entry.OriginalSize
			entry.MergeCandidate = true

			if size >= p.cfg.MinChunkSize {
				if float64(size) <= p.maxTolerated() {
					for _, e := range group {
						e.Action = ActionMerge
						e.MergeGroup = groupID
					}
				} else {
					// Crossing the minimum also overshot the cap:
					// discard the group rather than re-split it.
					for _, e := range group {
						e.Action = ActionKeep
						e.MergeCandidate = false
					}
				}
				group, size = nil, 0
			}
		} else {
			finalize()
		}

		if len(entry.ChildElements) > 0 {
			childPath := strconv.Itoa(entry.ID)
			if parentPath != "" {
				childPath = parentPath + "_" + strconv.Itoa(entry.ID)
			}
			p.identifyMergeCandidates(entry.ChildElements, childPath)
		}
	}
	finalize()
}

// GenerateChunks materializes a plan against the tree it was built from.
// Singles and splits come out in tree order; merged chunks are appended
// afterward grouped by first-seen group id.
func (p *Planner) GenerateChunks(doc *structure.Node, plan *Plan) []Chunk {
	var chunks []Chunk

	var walk func(*PlanEntry)
	walk = func(entry *PlanEntry) {
		switch entry.Action {
		case ActionChunk:
			content := p.extractContent(doc, entry.ID)
			for i, piece := range p.splitter.Split(content) {
				chunks = append(chunks, Chunk{
					ChunkID:       fmt.Sprintf("chunk_%d_%d", entry.ID, i),
					SourceElement: entry.ID,
					ChunkType:     Split,
					Content:       piece,
					Size:          runeLen(piece),
				})
			}
		case ActionMerge:
			// Deferred to the merge pass.
		default:
			if !entry.MergeCandidate {
				content := p.extractContent(doc, entry.ID)
				chunks = append(chunks, Chunk{
					ChunkID:       fmt.Sprintf("chunk_%d", entry.ID),
					SourceElement: entry.ID,
					ChunkType:     Single,
					Content:       content,
					Size:          runeLen(content),
				})
			}
		}
		for _, child := range entry.ChildElements {
			walk(child)
		}
	}
	for _, entry := range plan.Elements {
		walk(entry)
	}

	// Collect merge groups preserving insertion order.
	groups := map[string][]int{}
	var order []string
	var collect func(*PlanEntry)
	collect = func(entry *PlanEntry) {
		if entry.Action == ActionMerge && entry.MergeGroup != "" {
			if _, seen := groups[entry.MergeGroup]; !seen {
				order = append(order, entry.MergeGroup)
			}
			groups[entry.MergeGroup] = append(groups[entry.MergeGroup], entry.ID)
		}
		for _, child := range entry.ChildElements {
			collect(child)
		}
	}
	for _, entry := range plan.Elements {
		collect(entry)
	}

	for _, groupID := range order {
		ids := groups[groupID]
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, p.extractContent(doc, id))
		}
		merged := strings.TrimSpace(strings.Join(parts, "\n\n"))
		if merged == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			ChunkID:        "chunk_" + groupID,
			SourceElements: ids,
			ChunkType:      Merged,
			Content:        merged,
			Size:           runeLen(merged),
		})
	}

	return chunks
}

// ProcessDocument plans and materializes in one call.
func (p *Planner) ProcessDocument(doc *structure.Node) (*Plan, []Chunk) {
	plan := p.CreatePlan(doc)
	return plan, p.GenerateChunks(doc, plan)
}

// extractContent looks a node up by id and returns its content. A miss
// returns empty content; it indicates a plan/tree mismatch, not bad
// input, so it is logged rather than raised.
func (p *Planner) extractContent(doc *structure.Node, id int) string {
	node := doc.FindByID(id)
	if node == nil {
		if p.log != nil {
			p.log.Warn("plan references unknown element", "id", id)
		}
		return ""
	}
	return node.Content
}
