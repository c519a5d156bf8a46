package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gobbox/pkg/analysis"
	"github.com/philipparndt/gobbox/pkg/annotation"
	"github.com/philipparndt/gobbox/pkg/yolo"
)

const (
	noPreferredLabel = "(none)"
	minLabelOptions  = 9
)

// sidePanel shows the state of the session and offers the actions that
// are also reachable by keyboard
type sidePanel struct {
	app *App

	folderLabel *widget.Label
	imageLabel  *widget.Label
	slider      *widget.Slider
	boxesLabel  *widget.Label
	statusLabel *widget.Label

	labelSelect     *widget.Select
	preferredSelect *widget.Select

	nameEntry    *widget.Entry
	objectsEntry *widget.Entry
	sizeEntry    *widget.Entry

	predictButton *widget.Button

	// set while widgets are updated from the session so their change
	// callbacks do not write back
	updating bool
}

func newSidePanel(a *App) *sidePanel {
	p := &sidePanel{
		app:         a,
		folderLabel: widget.NewLabel("No folder opened"),
		imageLabel:  widget.NewLabel(""),
		boxesLabel:  widget.NewLabel(""),
		statusLabel: widget.NewLabel(""),
	}
	p.folderLabel.Wrapping = fyne.TextWrapBreak
	p.imageLabel.TextStyle = fyne.TextStyle{Bold: true}
	p.imageLabel.Wrapping = fyne.TextWrapBreak
	p.statusLabel.Wrapping = fyne.TextWrapWord

	p.slider = widget.NewSlider(0, 1)
	p.slider.Step = 1
	p.slider.OnChangeEnded = func(v float64) {
		if p.updating {
			return
		}
		a.show(int(v))
	}

	p.labelSelect = widget.NewSelect(nil, func(string) {
		if p.updating {
			return
		}
		a.session.Store().ActivateLabel(p.labelSelect.SelectedIndex())
	})
	p.preferredSelect = widget.NewSelect(nil, func(string) {
		if p.updating {
			return
		}
		store := a.session.Store()
		if i := p.preferredSelect.SelectedIndex(); i > 0 {
			store.SetPreferredLabel(i - 1)
		} else {
			store.ClearPreferredLabel()
		}
	})

	p.nameEntry = widget.NewEntry()
	p.nameEntry.SetPlaceHolder("name contains")
	p.objectsEntry = widget.NewEntry()
	p.objectsEntry.SetPlaceHolder("objects, e.g. 1-3")
	p.sizeEntry = widget.NewEntry()
	p.sizeEntry.SetPlaceHolder("relative size, e.g. 0.01-0.2")

	p.predictButton = widget.NewButton("Predict", a.togglePredict)

	p.setLabelNames(nil)
	return p
}

func (p *sidePanel) content() fyne.CanvasObject {
	a := p.app

	splitButtons := container.NewGridWithColumns(3)
	for _, split := range a.cfg.Splits {
		splitButtons.Add(widget.NewButton(split, func() { a.moveToSplit(split) }))
	}

	navigation := container.NewGridWithColumns(2,
		widget.NewButton("Previous", a.prev),
		widget.NewButton("Next", a.next),
	)

	filter := container.NewVBox(
		p.nameEntry,
		p.objectsEntry,
		p.sizeEntry,
		container.NewGridWithColumns(2,
			widget.NewButton("Apply", p.applyFilter),
			widget.NewButton("Clear", p.clearFilter),
		),
	)

	help := widget.NewLabel(
		"Drag on empty space to draw a box.\n" +
			"Drag a box, its corners or edges to edit it.\n" +
			"1-9 label, [ ] cycle, Del remove.\n" +
			"Left/Right image, Home fit view.\n" +
			"Right drag to pan, scroll to zoom.",
	)
	help.Wrapping = fyne.TextWrapWord

	panel := container.NewVBox(
		widget.NewButton("Open Folder", a.showFolderDialog),
		p.folderLabel,
		widget.NewSeparator(),
		p.imageLabel,
		p.slider,
		navigation,
		p.boxesLabel,
		widget.NewSeparator(),
		widget.NewLabel("Label"),
		p.labelSelect,
		widget.NewLabel("Preferred label"),
		p.preferredSelect,
		widget.NewSeparator(),
		widget.NewButton("Save", a.save),
		widget.NewLabel("Move to"),
		splitButtons,
		widget.NewButton("Trash", a.trash),
		widget.NewSeparator(),
		widget.NewLabel("Filter"),
		filter,
		widget.NewSeparator(),
		p.predictButton,
		p.statusLabel,
		widget.NewSeparator(),
		help,
	)

	scroll := container.NewVScroll(panel)
	scroll.SetMinSize(fyne.NewSize(280, 0))
	return scroll
}

// setLabelNames rebuilds the label choices. At least nine labels are
// offered so every digit key has an entry.
func (p *sidePanel) setLabelNames(names []string) {
	n := max(len(names), minLabelOptions)
	options := make([]string, n)
	for i := range options {
		options[i] = fmt.Sprintf("%d: %s", i+1, yolo.LabelName(names, i))
	}

	p.updating = true
	defer func() { p.updating = false }()

	p.labelSelect.SetOptions(options)
	p.preferredSelect.SetOptions(append([]string{noPreferredLabel}, options...))
	p.updateLabels()
}

// updateLabels mirrors the pen and the preferred label of the store
func (p *sidePanel) updateLabels() {
	store := p.app.session.Store()

	wasUpdating := p.updating
	p.updating = true
	defer func() { p.updating = wasUpdating }()

	if active := store.ActiveLabel(); active < len(p.labelSelect.Options) {
		p.labelSelect.SetSelectedIndex(active)
	}
	if preferred, ok := store.PreferredLabel(); ok && preferred+1 < len(p.preferredSelect.Options) {
		p.preferredSelect.SetSelectedIndex(preferred + 1)
	} else {
		p.preferredSelect.SetSelectedIndex(0)
	}
}

// update refreshes everything that depends on the current image
func (p *sidePanel) update() {
	s := p.app.session

	p.updating = true
	defer func() { p.updating = false }()

	if dir := s.Dir(); dir != "" {
		text := dir
		if review := s.ReviewDir(); review != "" {
			text += "\nreviewing " + filepath.Base(review)
		}
		p.folderLabel.SetText(text)
	}

	if s.Len() == 0 {
		p.imageLabel.SetText("No images")
		p.slider.Max = 1
		p.slider.SetValue(0)
		p.slider.Disable()
	} else {
		p.imageLabel.SetText(fmt.Sprintf("%d / %d  %s", s.Index()+1, s.Len(), filepath.Base(s.Current())))
		p.slider.Max = float64(max(s.Len()-1, 1))
		p.slider.SetValue(float64(s.Index()))
		p.slider.Enable()
	}

	p.updateLabels()
	p.updateBoxes()
}

// updateBoxes refreshes the annotation summary of the current image
func (p *sidePanel) updateBoxes() {
	s := p.app.session
	store := s.Store()

	if s.Current() == "" {
		p.boxesLabel.SetText("")
		return
	}

	lines := []string{fmt.Sprintf("%d boxes", store.Len())}
	if i, ok := store.Selected(); ok {
		b, _ := store.Box(i)
		lines = append(lines, fmt.Sprintf("selected #%d %s", i+1, yolo.LabelName(p.app.names, b.LabelID())))
		lines = append(lines, fmt.Sprintf("%.0fx%.0f at %.0f,%.0f", b.Width(), b.Height(), b.XMin(), b.YMin()))
	}
	if part := hoverPart(s.Editor()); part != "" {
		lines = append(lines, "hover "+part)
	}
	if s.LoadError() != nil {
		lines = append(lines, "labels not loaded, changes are not saved")
	} else if src := s.LabelSource(); src != store.OutputPath() && store.Loaded() {
		lines = append(lines, "from "+filepath.Base(filepath.Dir(src)))
	}
	p.boxesLabel.SetText(strings.Join(lines, "\n"))
}

func (p *sidePanel) setStatus(text string) {
	p.statusLabel.SetText(text)
}

func (p *sidePanel) setPredicting(running bool) {
	if running {
		p.predictButton.SetText("Stop prediction")
	} else {
		p.predictButton.SetText("Predict")
	}
}

func (p *sidePanel) applyFilter() {
	f, err := p.filter()
	if err != nil {
		p.app.showError(err)
		return
	}
	p.app.applyFilter(f)
}

func (p *sidePanel) clearFilter() {
	p.nameEntry.SetText("")
	p.objectsEntry.SetText("")
	p.sizeEntry.SetText("")
	p.app.applyFilter(nil)
}

// filter builds a filter from the entries, nil when all are empty
func (p *sidePanel) filter() (*analysis.Filter, error) {
	objects, err := analysis.ParseIntRange(p.objectsEntry.Text)
	if err != nil {
		return nil, err
	}
	size, err := analysis.ParseFloatRange(p.sizeEntry.Text)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(p.nameEntry.Text)
	if name == "" && objects == nil && size == nil {
		return nil, nil
	}
	return &analysis.Filter{NamePattern: name, NumObjects: objects, RelSize: size}, nil
}

// storeChanged keeps the panel in sync with the store
func (p *sidePanel) storeChanged(c annotation.Change) {
	switch c {
	case annotation.ChangeLabel:
		p.updateLabels()
		p.updateBoxes()
	default:
		p.updateBoxes()
	}
}
