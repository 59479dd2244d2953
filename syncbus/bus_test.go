package syncbus

import (
	"reflect"
	"testing"

	"go-drummer/theory"
)

func TestDeliveryOrder(t *testing.T) {
	b := New()
	var got []string
	b.OnPatternChanged(func(e PatternChanged) { got = append(got, "a:"+e.PatternID) })
	b.OnPatternChanged(func(e PatternChanged) { got = append(got, "b:"+e.PatternID) })
	b.OnGenreChanged(func(e GenreChanged) { got = append(got, "g:"+e.GenreID) })
	b.PublishGenre(GenreChanged{GenreID: "funk"})
	b.PublishPattern(PatternChanged{PatternID: "funk_basic"})

	want := []string{"g:funk", "a:funk_basic", "b:funk_basic"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRootAndChord(t *testing.T) {
	b := New()
	var roots []RootChanged
	var chords []ChordChanged
	b.OnRootChanged(func(e RootChanged) { roots = append(roots, e) })
	b.OnChordChanged(func(e ChordChanged) { chords = append(chords, e) })
	b.PublishRoot(RootChanged{PitchClass: theory.D, Origin: OriginBass})
	b.PublishChord(ChordChanged{Root: theory.G, Notes: []int{55, 59, 62}})

	if len(roots) != 1 || roots[0].PitchClass != theory.D || roots[0].Origin != OriginBass {
		t.Errorf("roots = %v", roots)
	}
	if len(chords) != 1 || chords[0].Root != theory.G {
		t.Errorf("chords = %v", chords)
	}
}

func TestNilBusIsSilent(t *testing.T) {
	var b *Bus
	b.PublishPattern(PatternChanged{})
	b.PublishGenre(GenreChanged{})
	b.PublishRoot(RootChanged{})
	b.PublishChord(ChordChanged{})
	b.PublishDrumsStopped(DrumsStopped{})
}
